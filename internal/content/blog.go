package content

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"eveningmall/internal/apperr"
	"eveningmall/internal/models"
)

const msgBlogMissing = "Blog not found"

type BlogInput struct {
	Name        *string
	Heading     *string
	Description *string
	Image       *string
	Tags        []string
	TagsSet     bool
	Categories  []string
	CatsSet     bool
}

type BlogPage struct {
	Blogs       []models.Blog `json:"blogs"`
	TotalBlogs  int64         `json:"totalBlogs"`
	CurrentPage int64         `json:"currentPage"`
	TotalPages  int64         `json:"totalPages"`
}

func cleanList(values []string) models.StringList {
	out := models.StringList{}
	for _, v := range values {
		out = append(out, models.SplitList(v)...)
	}
	return out
}

// CreateBlog stores a draft blog.
func (s *Service) CreateBlog(ctx context.Context, actor, ip string, in BlogInput) (models.Blog, error) {
	if in.Heading == nil || strings.TrimSpace(*in.Heading) == "" {
		return models.Blog{}, apperr.InvalidInput("heading is required")
	}
	if in.Image == nil || strings.TrimSpace(*in.Image) == "" {
		return models.Blog{}, apperr.InvalidInput("Main image is required")
	}
	blog := models.Blog{
		ID:         primitive.NewObjectID(),
		Name:       trimmed(in.Name),
		Heading:    trimmed(in.Heading),
		Image:      trimmed(in.Image),
		Tags:       cleanList(in.Tags),
		Categories: cleanList(in.Categories),
		Sts:        models.Draft,
		CreatedIP:  ip,
		Audit:      models.NewAudit(actor, s.now()),
	}
	if in.Description != nil {
		blog.Description = *in.Description
	}
	if _, err := s.blogs.InsertOne(ctx, blog); err != nil {
		return models.Blog{}, apperr.FromMongo(err, "")
	}
	return blog, nil
}

func (s *Service) UpdateBlog(ctx context.Context, actor, id string, in BlogInput) (models.Blog, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Blog{}, err
	}
	set := bson.M{}
	setIfPresent(set, "name", in.Name)
	setIfPresent(set, "heading", in.Heading)
	setIfPresent(set, "image", in.Image)
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.TagsSet {
		set["tags"] = cleanList(in.Tags)
	}
	if in.CatsSet {
		set["categories"] = cleanList(in.Categories)
	}
	if h, ok := set["heading"]; ok && h == "" {
		return models.Blog{}, apperr.InvalidInput("heading cannot be empty")
	}

	var blog models.Blog
	if err := s.update(ctx, s.blogs, oid, actor, msgBlogMissing, set, &blog); err != nil {
		return models.Blog{}, err
	}
	return blog, nil
}

func (s *Service) DeleteBlog(ctx context.Context, actor, id string) error {
	return s.softDelete(ctx, s.blogs, id, actor, msgBlogMissing)
}

// ToggleBlog flips draft and published. publishDate is stamped on every
// transition to published.
func (s *Service) ToggleBlog(ctx context.Context, actor, id string) (models.Blog, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Blog{}, err
	}
	now := s.now().UTC()
	extra := bson.M{"publishDate": bson.M{"$cond": bson.A{
		bson.M{"$eq": bson.A{"$sts", models.Published}}, "$publishDate", now,
	}}}
	var blog models.Blog
	if err := s.toggle(ctx, s.blogs, oid, actor, msgBlogMissing, extra, &blog); err != nil {
		return models.Blog{}, err
	}
	return blog, nil
}

// PublishedBlogs pages through published blogs, newest first.
func (s *Service) PublishedBlogs(ctx context.Context, page, limit int64) (BlogPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 6
	}
	filter := models.WithActive(bson.M{"sts": models.Published})
	total, err := s.blogs.CountDocuments(ctx, filter)
	if err != nil {
		return BlogPage{}, apperr.Internal("count blogs", err)
	}
	out := BlogPage{Blogs: []models.Blog{}, TotalBlogs: total, CurrentPage: page, TotalPages: (total + limit - 1) / limit}
	if total == 0 {
		return out, nil
	}
	opts := newestFirst().SetSkip((page - 1) * limit).SetLimit(limit)
	if err := findAll(ctx, s.blogs, filter, opts, &out.Blogs); err != nil {
		return BlogPage{}, err
	}
	return out, nil
}

// Blog returns a published blog.
func (s *Service) Blog(ctx context.Context, id string) (models.Blog, error) {
	oid, err := parseID(id)
	if err != nil {
		return models.Blog{}, err
	}
	var blog models.Blog
	err = s.blogs.FindOne(ctx, models.WithActive(bson.M{"_id": oid, "sts": models.Published})).Decode(&blog)
	if err != nil {
		return models.Blog{}, apperr.FromMongo(err, msgBlogMissing)
	}
	return blog, nil
}

// AllBlogs is the admin listing, drafts included.
func (s *Service) AllBlogs(ctx context.Context) ([]models.Blog, error) {
	blogs := []models.Blog{}
	if err := findAll(ctx, s.blogs, models.ActiveFilter(), newestFirst(), &blogs); err != nil {
		return nil, err
	}
	return blogs, nil
}
