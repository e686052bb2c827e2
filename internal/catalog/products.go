package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/apperr"
	"eveningmall/internal/database"
	"eveningmall/internal/logger"
	"eveningmall/internal/models"
	"eveningmall/internal/sequence"
	"eveningmall/internal/slots"
	"eveningmall/internal/taxonomy"
)

// ProductInput carries a create or partial-update request. A nil field is
// left untouched on update.
type ProductInput struct {
	Name         *string
	Description  *string
	Price        *float64
	Discount     *float64
	ShowDiscount *bool
	Quantity     *int
	PrdType      *models.ProductType
	Brand        *string
	Category     *string
	SubCategory  *string
	Tags         []string
	TagsSet      bool
	ImgMain      *string
	ImgMulti     []string
	ImgMultiSet  bool
}

type ProductPage struct {
	Items      []models.Product `json:"items"`
	Total      int64            `json:"total"`
	Page       int64            `json:"page"`
	TotalPages int64            `json:"totalPages"`
}

func typeRule(t models.ProductType, excludePID int64) slots.Rule {
	members := models.WithActive(bson.M{"prdType": t})
	if excludePID > 0 {
		members["PID"] = bson.M{"$ne": excludePID}
	}
	return slots.Rule{
		Key:     "prdType:" + string(t),
		Members: members,
		Limit:   models.ProductTypeCapacity,
		Message: fmt.Sprintf("Maximum %d products allowed for %s", models.ProductTypeCapacity, t),
	}
}

func validateInput(in ProductInput, current *models.Product) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return apperr.InvalidInput("name is required")
	}
	price, discount := 0.0, 0.0
	if current != nil {
		price, discount = current.Price, current.Discount
	}
	if in.Price != nil {
		price = *in.Price
	}
	if in.Discount != nil {
		discount = *in.Discount
	}
	if err := validatePricing(price, discount); err != nil {
		return apperr.InvalidInput(err.Error())
	}
	if in.Quantity != nil && *in.Quantity < 0 {
		return apperr.InvalidInput("quantity must be 0 or greater")
	}
	if in.PrdType != nil {
		if _, ok := models.ParseProductType(string(*in.PrdType)); !ok {
			return apperr.InvalidInput("prdType must be empty, trending or featured")
		}
	}
	return nil
}

type taxonomyIDs struct {
	brand, category, subCategory int64
	brandSet, categorySet        bool
	subCategorySet               bool
}

// resolveTaxonomy resolves the names present in in. An empty name clears the
// reference, and moving to another category without naming a subcategory
// clears the subcategory.
func (s *Service) resolveTaxonomy(ctx context.Context, actor string, in ProductInput, currentCat int64) (taxonomyIDs, error) {
	var ids taxonomyIDs
	var err error

	if in.Brand != nil {
		ids.brandSet = true
		if name := strings.TrimSpace(*in.Brand); name != "" {
			if ids.brand, err = s.taxonomy.Resolve(ctx, name, taxonomy.Brand, 0, actor); err != nil {
				return ids, err
			}
		}
	}

	parent := currentCat
	if in.Category != nil {
		ids.categorySet = true
		parent = 0
		if name := strings.TrimSpace(*in.Category); name != "" {
			if ids.category, err = s.taxonomy.Resolve(ctx, name, taxonomy.Category, 0, actor); err != nil {
				return ids, err
			}
			parent = ids.category
		}
	}

	if in.SubCategory != nil {
		ids.subCategorySet = true
		if name := strings.TrimSpace(*in.SubCategory); name != "" {
			if parent <= 0 {
				return ids, apperr.InvalidInput("category is required for subcategory")
			}
			if ids.subCategory, err = s.taxonomy.Resolve(ctx, name, taxonomy.SubCategory, parent, actor); err != nil {
				return ids, err
			}
		}
	} else if ids.categorySet && ids.category != currentCat {
		// The old subcategory belongs to the previous parent.
		ids.subCategorySet = true
	}
	return ids, nil
}

// Create validates in, resolves its taxonomy names, allocates a PID and
// inserts the product. The prdType capacity claim and the insert share a
// transaction.
func (s *Service) Create(ctx context.Context, actor string, in ProductInput) (models.Product, error) {
	if in.Name == nil || in.Price == nil {
		return models.Product{}, apperr.InvalidInput("name and price are required")
	}
	if err := validateInput(in, nil); err != nil {
		return models.Product{}, err
	}

	tax, err := s.resolveTaxonomy(ctx, actor, in, 0)
	if err != nil {
		return models.Product{}, err
	}

	pid, err := s.ids.Next(ctx, sequence.Product)
	if err != nil {
		return models.Product{}, err
	}

	p := models.Product{
		PID:      pid,
		Name:     strings.TrimSpace(*in.Name),
		Price:    *in.Price,
		BrndID:   tax.brand,
		CatID:    tax.category,
		SubCatID: tax.subCategory,
		Tags:     models.StringList(in.Tags),
		ImgMulti: in.ImgMulti,
		Audit:    models.NewAudit(actor, s.now()),
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Discount != nil {
		p.Discount = *in.Discount
	}
	if in.ShowDiscount != nil && *in.ShowDiscount {
		p.ShowDiscount = 1
	}
	if in.Quantity != nil {
		p.Quantity = *in.Quantity
	}
	if in.PrdType != nil {
		p.PrdType = *in.PrdType
	}
	if in.ImgMain != nil {
		p.ImgMain = *in.ImgMain
	}

	err = database.WithTransaction(ctx, s.db, func(sc mongo.SessionContext) error {
		if p.PrdType != models.ProductTypeNone {
			if err := slots.Claim(sc, s.db, s.products, typeRule(p.PrdType, 0)); err != nil {
				return err
			}
		}
		_, err := s.products.InsertOne(sc, p)
		return err
	})
	if err != nil {
		return models.Product{}, apperr.FromMongo(err, "")
	}

	p.EffectivePrice = EffectivePrice(p.Price, p.Discount, p.ShowDiscount)
	p.InStock = p.Quantity > 0
	logger.Get("catalog").WithField("PID", pid).Infof("product created by %s", actor)
	return p, nil
}

// Update applies the fields present in in to the active product pid.
func (s *Service) Update(ctx context.Context, actor string, pid int64, in ProductInput) (models.Product, error) {
	current, err := s.loadActive(ctx, pid)
	if err != nil {
		return models.Product{}, err
	}
	if err := validateInput(in, &current); err != nil {
		return models.Product{}, err
	}

	tax, err := s.resolveTaxonomy(ctx, actor, in, current.CatID)
	if err != nil {
		return models.Product{}, err
	}

	set := models.UpdateStamp(actor, s.now())
	unset := bson.M{}
	if in.Name != nil {
		set["name"] = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		set["description"] = *in.Description
	}
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.Discount != nil {
		set["discount"] = *in.Discount
	}
	if in.ShowDiscount != nil {
		if *in.ShowDiscount {
			set["showDiscount"] = 1
		} else {
			set["showDiscount"] = 0
		}
	}
	if in.Quantity != nil {
		set["quantity"] = *in.Quantity
	}
	if in.PrdType != nil {
		set["prdType"] = *in.PrdType
	}
	if in.TagsSet {
		set["tags"] = models.StringList(in.Tags)
	}
	if in.ImgMain != nil {
		set["imgMain"] = *in.ImgMain
	}
	if in.ImgMultiSet {
		set["imgMulti"] = in.ImgMulti
	}
	applyReference(set, unset, "brndId", tax.brandSet, tax.brand)
	applyReference(set, unset, "catId", tax.categorySet, tax.category)
	applyReference(set, unset, "subCatId", tax.subCategorySet, tax.subCategory)

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	claim := in.PrdType != nil && *in.PrdType != models.ProductTypeNone && *in.PrdType != current.PrdType
	err = database.WithTransaction(ctx, s.db, func(sc mongo.SessionContext) error {
		if claim {
			if err := slots.Claim(sc, s.db, s.products, typeRule(*in.PrdType, pid)); err != nil {
				return err
			}
		}
		res, err := s.products.UpdateOne(sc, models.WithActive(bson.M{"PID": pid}), update)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return apperr.NotFound("Product not found")
		}
		return nil
	})
	if err != nil {
		return models.Product{}, apperr.FromMongo(err, "Product not found")
	}

	return s.loadActive(ctx, pid)
}

func applyReference(set, unset bson.M, field string, present bool, id int64) {
	if !present {
		return
	}
	if id > 0 {
		set[field] = id
	} else {
		unset[field] = ""
	}
}

// Delete soft-deletes the product, which also frees its prdType slot.
func (s *Service) Delete(ctx context.Context, actor string, pid int64) error {
	res, err := s.products.UpdateOne(ctx,
		models.WithActive(bson.M{"PID": pid}),
		bson.M{"$set": models.DeleteStamp(actor, s.now())},
	)
	if err != nil {
		return apperr.FromMongo(err, "")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Product not found")
	}
	logger.Get("catalog").WithField("PID", pid).Infof("product deleted by %s", actor)
	return nil
}

// ToggleDiscount flips showDiscount in a single update.
func (s *Service) ToggleDiscount(ctx context.Context, actor string, pid int64) (models.Product, error) {
	now := s.now().UTC()
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"showDiscount": bson.M{"$cond": bson.A{
				bson.M{"$in": bson.A{"$showDiscount", bson.A{1, true}}}, 0, 1,
			}},
			"updatedBy": actor,
			"updatedOn": now,
		}}},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var raw bson.M
	err := s.products.FindOneAndUpdate(ctx, models.WithActive(bson.M{"PID": pid}), pipeline, opts).Decode(&raw)
	if err != nil {
		return models.Product{}, apperr.FromMongo(err, "Product not found")
	}
	p, err := normalizeProductDocument(raw)
	if err != nil {
		return models.Product{}, apperr.Internal("decode product", err)
	}
	return p, nil
}

// TypeCount reports how many active products hold t.
func (s *Service) TypeCount(ctx context.Context, t models.ProductType) (int64, error) {
	if t == models.ProductTypeNone {
		return 0, apperr.InvalidInput("prdType is required")
	}
	n, err := s.products.CountDocuments(ctx, models.WithActive(bson.M{"prdType": t}))
	if err != nil {
		return 0, apperr.Internal("count products by type", err)
	}
	return n, nil
}

func (s *Service) loadActive(ctx context.Context, pid int64) (models.Product, error) {
	var raw bson.M
	err := s.products.FindOne(ctx, models.WithActive(bson.M{"PID": pid})).Decode(&raw)
	if err != nil {
		return models.Product{}, apperr.FromMongo(err, "Product not found")
	}
	p, err := normalizeProductDocument(raw)
	if err != nil {
		return models.Product{}, apperr.Internal("decode product", err)
	}
	return p, nil
}

// GetByPID returns the active product with its brand, category and
// subcategory names filled in.
func (s *Service) GetByPID(ctx context.Context, pid int64) (models.Product, error) {
	p, err := s.loadActive(ctx, pid)
	if err != nil {
		return models.Product{}, err
	}

	refs := []struct {
		kind taxonomy.Kind
		id   int64
		dst  *string
	}{
		{taxonomy.Brand, p.BrndID, &p.BrandName},
		{taxonomy.Category, p.CatID, &p.CategoryName},
		{taxonomy.SubCategory, p.SubCatID, &p.SubCategoryName},
	}
	for _, ref := range refs {
		if ref.id <= 0 {
			continue
		}
		names, err := s.taxonomy.NamesByIDs(ctx, ref.kind, []int64{ref.id})
		if err != nil {
			return models.Product{}, err
		}
		*ref.dst = names[ref.id]
	}
	return p, nil
}

// Products returns the active products whose PID is in pids, keyed by PID.
func (s *Service) Products(ctx context.Context, pids []int64) (map[int64]models.Product, error) {
	out := make(map[int64]models.Product, len(pids))
	if len(pids) == 0 {
		return out, nil
	}
	cursor, err := s.products.Find(ctx, models.WithActive(bson.M{"PID": bson.M{"$in": pids}}))
	if err != nil {
		return nil, apperr.Internal("find products", err)
	}
	defer cursor.Close(ctx)

	items, err := decodeProducts(ctx, cursor)
	if err != nil {
		return nil, apperr.Internal("decode products", err)
	}
	for _, p := range items {
		out[p.PID] = p
	}
	return out, nil
}

// List is the admin listing, newest first.
func (s *Service) List(ctx context.Context, page, limit int64) (ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}
	filter := models.ActiveFilter()

	total, err := s.products.CountDocuments(ctx, filter)
	if err != nil {
		return ProductPage{}, apperr.Internal("count products", err)
	}
	out := ProductPage{Items: []models.Product{}, Total: total, Page: page, TotalPages: TotalPages(total, limit)}
	if total == 0 {
		return out, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdOn", Value: -1}}).
		SetSkip((page - 1) * limit).
		SetLimit(limit)
	cursor, err := s.products.Find(ctx, filter, opts)
	if err != nil {
		return ProductPage{}, apperr.Internal("find products", err)
	}
	defer cursor.Close(ctx)

	if out.Items, err = decodeProducts(ctx, cursor); err != nil {
		return ProductPage{}, apperr.Internal("decode products", err)
	}
	return out, nil
}

func (s *Service) CustomHTML(ctx context.Context, pid int64) (string, error) {
	var doc struct {
		CustomHTML string `bson:"customHTML"`
	}
	opts := options.FindOne().SetProjection(bson.M{"customHTML": 1})
	err := s.products.FindOne(ctx, models.WithActive(bson.M{"PID": pid}), opts).Decode(&doc)
	if err != nil {
		return "", apperr.FromMongo(err, "Product not found")
	}
	return doc.CustomHTML, nil
}

func (s *Service) SaveCustomHTML(ctx context.Context, actor string, pid int64, html string) error {
	set := models.UpdateStamp(actor, s.now())
	set["customHTML"] = html
	res, err := s.products.UpdateOne(ctx, models.WithActive(bson.M{"PID": pid}), bson.M{"$set": set})
	if err != nil {
		return apperr.FromMongo(err, "")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("Product not found")
	}
	return nil
}
