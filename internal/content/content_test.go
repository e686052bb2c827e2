package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"eveningmall/internal/apperr"
	"eveningmall/internal/models"
)

func strPtr(s string) *string { return &s }

func matched(n int32) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "n", Value: n}, bson.E{Key: "nModified", Value: n})
}

func found(doc bson.D) bson.D {
	return mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc})
}

func TestBlogValidation(t *testing.T) {
	s := &Service{}
	_, err := s.CreateBlog(context.Background(), "admin", "", BlogInput{Image: strPtr("a.png")})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = s.CreateBlog(context.Background(), "admin", "", BlogInput{Heading: strPtr("Hello")})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = s.UpdateBlog(context.Background(), "admin", "not-an-id", BlogInput{})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
}

func TestBlogs(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("create starts as draft", func(mt *mtest.T) {
		s := NewService(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		blog, err := s.CreateBlog(context.Background(), "admin", "10.0.0.1", BlogInput{
			Heading: strPtr(" Hello "), Image: strPtr("a.png"), Tags: []string{"tea, cups", "gifts"},
		})
		require.NoError(t, err)
		assert.Equal(t, "Hello", blog.Heading)
		assert.Equal(t, models.Draft, blog.Sts)
		assert.Equal(t, models.StringList{"tea", "cups", "gifts"}, blog.Tags)
	})

	mt.Run("toggle missing blog", func(mt *mtest.T) {
		s := NewService(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := s.ToggleBlog(context.Background(), "admin", primitive.NewObjectID().Hex())
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	mt.Run("published page", func(mt *mtest.T) {
		s := NewService(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.blogs", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(7)}}),
			mtest.CreateCursorResponse(0, "test.blogs", mtest.FirstBatch,
				bson.D{{Key: "heading", Value: "Hello"}, {Key: "sts", Value: int32(1)}}),
		)

		page, err := s.PublishedBlogs(context.Background(), 2, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(7), page.TotalBlogs)
		assert.Equal(t, int64(2), page.TotalPages)
		require.Len(t, page.Blogs, 1)
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		s := NewService(mt.DB)
		mt.AddMockResponses(matched(0))
		err := s.DeleteBlog(context.Background(), "admin", primitive.NewObjectID().Hex())
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestToggleSlider(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	id := primitive.NewObjectID()

	mt.Run("publishing a fifth slider conflicts", func(mt *mtest.T) {
		s := NewService(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.sliders", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: id}, {Key: "sts", Value: int32(0)}}),
			matched(1),
			mtest.CreateCursorResponse(0, "test.sliders", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(4)}}),
			mtest.CreateSuccessResponse(),
		)

		_, err := s.ToggleSlider(context.Background(), "admin", id.Hex())
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	mt.Run("publishes with a free slot", func(mt *mtest.T) {
		s := NewService(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.sliders", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: id}, {Key: "sts", Value: int32(0)}}),
			matched(1),
			mtest.CreateCursorResponse(0, "test.sliders", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(3)}}),
			found(bson.D{{Key: "_id", Value: id}, {Key: "sts", Value: int32(1)}, {Key: "image", Value: "s.png"}}),
			mtest.CreateSuccessResponse(),
		)

		slider, err := s.ToggleSlider(context.Background(), "admin", id.Hex())
		require.NoError(t, err)
		assert.Equal(t, models.Published, slider.Sts)
	})

	mt.Run("unpublishing skips the cap", func(mt *mtest.T) {
		s := NewService(mt.DB)
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "test.sliders", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: id}, {Key: "sts", Value: int32(1)}}),
			found(bson.D{{Key: "_id", Value: id}, {Key: "sts", Value: int32(0)}}),
			mtest.CreateSuccessResponse(),
		)

		slider, err := s.ToggleSlider(context.Background(), "admin", id.Hex())
		require.NoError(t, err)
		assert.Equal(t, models.Draft, slider.Sts)
	})
}

func TestSubmitTestimonial(t *testing.T) {
	s := &Service{}
	_, err := s.SubmitTestimonial(context.Background(), "Ada", TestimonialInput{Name: "Ada", Message: "Great", Rating: 0.4})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	_, err = s.SubmitTestimonial(context.Background(), "Ada", TestimonialInput{Name: "Ada", Rating: 4})
	assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))

	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	mt.Run("stores a draft", func(mt *mtest.T) {
		s := NewService(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		got, err := s.SubmitTestimonial(context.Background(), "Ada", TestimonialInput{Name: "Ada", Message: "Great", Rating: 4.5})
		require.NoError(t, err)
		assert.Equal(t, models.Draft, got.Sts)
		assert.Equal(t, 4.5, got.Rating)
	})
}

func TestNewsletter(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("already subscribed", func(mt *mtest.T) {
		s := NewService(mt.DB)
		mt.AddMockResponses(found(bson.D{{Key: "email", Value: "ada@example.com"}, {Key: "sts", Value: int32(1)}}))

		_, err := s.Subscribe(context.Background(), "Ada@example.com")
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	})

	mt.Run("resubscribes", func(mt *mtest.T) {
		s := NewService(mt.DB)
		mt.AddMockResponses(found(bson.D{{Key: "email", Value: "ada@example.com"}, {Key: "sts", Value: int32(0)}}))

		sub, err := s.Subscribe(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, models.Subscribed, sub.Sts)
	})

	mt.Run("invalid email", func(mt *mtest.T) {
		_, err := NewService(mt.DB).Subscribe(context.Background(), "  ")
		assert.Equal(t, apperr.KindInvalidInput, apperr.KindOf(err))
	})

	mt.Run("unknown unsubscribe", func(mt *mtest.T) {
		s := NewService(mt.DB)
		mt.AddMockResponses(matched(0))
		err := s.Unsubscribe(context.Background(), primitive.NewObjectID().Hex())
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}
