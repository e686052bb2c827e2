// Package taxonomy maps brand, category and subcategory names to their numeric
// keys and creates missing entries on first use.
package taxonomy

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"eveningmall/internal/apperr"
	"eveningmall/internal/database"
	"eveningmall/internal/logger"
	"eveningmall/internal/models"
	"eveningmall/internal/sequence"
)

type Kind string

const (
	Brand       Kind = "brand"
	Category    Kind = "category"
	SubCategory Kind = "subcategory"
)

type kindSpec struct {
	collection string
	idField    string
	entity     sequence.Entity
	scoped     bool
}

var specs = map[Kind]kindSpec{
	Brand:       {collection: database.Brands, idField: "brndId", entity: sequence.Brand},
	Category:    {collection: database.Categories, idField: "catId", entity: sequence.Category},
	SubCategory: {collection: database.SubCategories, idField: "subCatId", entity: sequence.SubCategory, scoped: true},
}

func ParseKind(value string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(value)))
	_, ok := specs[k]
	return k, ok
}

// SearchLimit caps Search results.
const SearchLimit = 10

type Allocator interface {
	Next(ctx context.Context, entity sequence.Entity) (int64, error)
}

// Entry is the flattened view of a brand, category or subcategory.
type Entry struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID int64  `json:"catId,omitempty"`
}

type Resolver struct {
	db  *mongo.Database
	ids Allocator
	now func() time.Time
}

func NewResolver(db *mongo.Database, ids Allocator) *Resolver {
	return &Resolver{db: db, ids: ids, now: time.Now}
}

func (r *Resolver) spec(kind Kind) (kindSpec, error) {
	s, ok := specs[kind]
	if !ok {
		return kindSpec{}, apperr.InvalidInput(fmt.Sprintf("unknown taxonomy kind %q", kind))
	}
	return s, nil
}

// nameFilter matches an active record by name within its scope. It relies on
// the case-insensitive collation for the comparison.
func nameFilter(s kindSpec, name string, parentID int64) bson.M {
	filter := models.WithActive(bson.M{"name": name})
	if s.scoped {
		filter["catId"] = parentID
	}
	return filter
}

// Resolve returns the id of the active record named name (case-insensitive),
// creating it when absent. parentID is required for subcategories.
func (r *Resolver) Resolve(ctx context.Context, name string, kind Kind, parentID int64, actor string) (int64, error) {
	s, err := r.spec(kind)
	if err != nil {
		return 0, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, apperr.InvalidInput(string(kind) + " name is required")
	}
	if s.scoped && parentID <= 0 {
		return 0, apperr.InvalidInput("category is required for subcategory")
	}

	coll := r.db.Collection(s.collection)
	filter := nameFilter(s, name, parentID)

	id, err := r.find(ctx, coll, s, filter)
	if err == nil {
		return id, nil
	}
	if apperr.KindOf(err) != apperr.KindNotFound {
		return 0, err
	}

	newID, err := r.ids.Next(ctx, s.entity)
	if err != nil {
		return 0, err
	}

	update := bson.M{"$setOnInsert": bson.M{
		s.idField:   newID,
		"createdBy": actor,
		"createdOn": r.now().UTC(),
		"dlt_sts":   models.Active,
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetCollation(database.CaseInsensitive)

	var doc bson.M
	err = coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent caller inserted the same name first.
		return r.find(ctx, coll, s, filter)
	}
	if err != nil {
		return 0, apperr.FromMongo(err, string(kind)+" not found")
	}

	id, ok := asInt64(doc[s.idField])
	if !ok {
		return 0, apperr.Internal("resolve "+string(kind), fmt.Errorf("document has no %s", s.idField))
	}
	if id == newID {
		logger.Get("taxonomy").WithFields(map[string]interface{}{
			"kind": kind, "name": name, "id": id,
		}).Info("created taxonomy entry")
	}
	return id, nil
}

func (r *Resolver) find(ctx context.Context, coll *mongo.Collection, s kindSpec, filter bson.M) (int64, error) {
	opts := options.FindOne().
		SetCollation(database.CaseInsensitive).
		SetProjection(bson.M{s.idField: 1})

	var doc bson.M
	if err := coll.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		return 0, apperr.FromMongo(err, "not found")
	}
	id, ok := asInt64(doc[s.idField])
	if !ok {
		return 0, apperr.Internal("decode taxonomy id", fmt.Errorf("document has no %s", s.idField))
	}
	return id, nil
}

// IDsByNames resolves names to ids without creating anything. Unknown names
// are skipped.
func (r *Resolver) IDsByNames(ctx context.Context, kind Kind, names []string) ([]int64, error) {
	s, err := r.spec(kind)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return []int64{}, nil
	}

	filter := models.WithActive(bson.M{"name": bson.M{"$in": names}})
	opts := options.Find().
		SetCollation(database.CaseInsensitive).
		SetProjection(bson.M{s.idField: 1})

	cursor, err := r.db.Collection(s.collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.FromMongo(err, "")
	}
	defer cursor.Close(ctx)

	ids := make([]int64, 0, len(names))
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, apperr.Internal("decode taxonomy", err)
		}
		if id, ok := asInt64(doc[s.idField]); ok {
			ids = append(ids, id)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, apperr.Internal("iterate taxonomy", err)
	}
	return ids, nil
}

// IDsMatching returns the ids of every active entry whose name contains
// fragment, case-insensitively, across all parents.
func (r *Resolver) IDsMatching(ctx context.Context, kind Kind, fragment string) ([]int64, error) {
	s, err := r.spec(kind)
	if err != nil {
		return nil, err
	}
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return []int64{}, nil
	}
	filter := models.WithActive(bson.M{
		"name": bson.M{"$regex": regexp.QuoteMeta(fragment), "$options": "i"},
	})
	entries, err := r.list(ctx, s, filter, options.Find().SetProjection(bson.M{s.idField: 1}))
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	return ids, nil
}

// NamesByIDs returns id -> name for the given ids, active records only.
func (r *Resolver) NamesByIDs(ctx context.Context, kind Kind, ids []int64) (map[int64]string, error) {
	s, err := r.spec(kind)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	filter := models.WithActive(bson.M{s.idField: bson.M{"$in": ids}})
	entries, err := r.list(ctx, s, filter, options.Find())
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		out[e.ID] = e.Name
	}
	return out, nil
}

// List returns active entries sorted by name. For subcategories a positive
// parentID restricts the list to that category.
func (r *Resolver) List(ctx context.Context, kind Kind, parentID int64) ([]Entry, error) {
	s, err := r.spec(kind)
	if err != nil {
		return nil, err
	}
	filter := models.ActiveFilter()
	if s.scoped && parentID > 0 {
		filter["catId"] = parentID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetCollation(database.CaseInsensitive)
	return r.list(ctx, s, filter, opts)
}

// Search matches names containing fragment, case-insensitively.
func (r *Resolver) Search(ctx context.Context, kind Kind, fragment string, parentID int64) ([]Entry, error) {
	s, err := r.spec(kind)
	if err != nil {
		return nil, err
	}
	if s.scoped && parentID <= 0 {
		return nil, apperr.InvalidInput("catId is required")
	}

	filter := models.WithActive(bson.M{
		"name": bson.M{"$regex": regexp.QuoteMeta(strings.TrimSpace(fragment)), "$options": "i"},
	})
	if s.scoped {
		filter["catId"] = parentID
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(SearchLimit)
	return r.list(ctx, s, filter, opts)
}

// Delete soft-deletes the entry. Products keep their dangling reference.
func (r *Resolver) Delete(ctx context.Context, kind Kind, id int64, actor string) error {
	s, err := r.spec(kind)
	if err != nil {
		return err
	}
	res, err := r.db.Collection(s.collection).UpdateOne(ctx,
		models.WithActive(bson.M{s.idField: id}),
		bson.M{"$set": models.DeleteStamp(actor, r.now())},
	)
	if err != nil {
		return apperr.FromMongo(err, "")
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound(string(kind) + " not found")
	}
	return nil
}

func (r *Resolver) list(ctx context.Context, s kindSpec, filter bson.M, opts *options.FindOptions) ([]Entry, error) {
	cursor, err := r.db.Collection(s.collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.FromMongo(err, "")
	}
	defer cursor.Close(ctx)

	entries := make([]Entry, 0)
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, apperr.Internal("decode taxonomy", err)
		}
		entries = append(entries, toEntry(s, doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, apperr.Internal("iterate taxonomy", err)
	}
	return entries, nil
}

func toEntry(s kindSpec, doc bson.M) Entry {
	e := Entry{}
	e.ID, _ = asInt64(doc[s.idField])
	e.Name, _ = doc["name"].(string)
	if s.scoped {
		e.ParentID, _ = asInt64(doc["catId"])
	}
	return e
}

func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
