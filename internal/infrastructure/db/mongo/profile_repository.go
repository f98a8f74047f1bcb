package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

const profilesCollection = "profiles"

// ProfileRepository implements ports.ProfileRepository on MongoDB.
type ProfileRepository struct {
	coll *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{coll: db.Collection(profilesCollection)}
}

type mongoProfile struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Name           string             `bson:"name"`
	Type           string             `bson:"type"`
	AgeRestriction int                `bson:"age_restriction"`
	Avatar         string             `bson:"avatar"`
	Watchlist      []string           `bson:"watchlist"`
	OwnerID        string             `bson:"owner_id"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func (mp *mongoProfile) toDomain() *domain.Profile {
	watchlist := mp.Watchlist
	if watchlist == nil {
		watchlist = []string{}
	}
	return &domain.Profile{
		ID:             mp.ID.Hex(),
		Name:           mp.Name,
		Type:           domain.ProfileType(mp.Type),
		AgeRestriction: mp.AgeRestriction,
		Avatar:         mp.Avatar,
		Watchlist:      watchlist,
		OwnerID:        mp.OwnerID,
		CreatedAt:      mp.CreatedAt,
		UpdatedAt:      mp.UpdatedAt,
	}
}

func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}},
	})
	return err
}

func (r *ProfileRepository) Create(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoProfile{
		Name:           p.Name,
		Type:           string(p.Type),
		AgeRestriction: p.AgeRestriction,
		Avatar:         p.Avatar,
		Watchlist:      []string{},
		OwnerID:        p.OwnerID,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert profile: %w", err)
	}

	created := *p
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	created.Watchlist = []string{}
	return &created, nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id string) (*domain.Profile, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProfileNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProfile
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *ProfileRepository) FindByOwner(ctx context.Context, ownerID string) ([]*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.coll.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer cur.Close(ctx)

	profiles := []*domain.Profile{}
	for cur.Next(ctx) {
		var mp mongoProfile
		if err := cur.Decode(&mp); err != nil {
			return nil, fmt.Errorf("decode profile: %w", err)
		}
		profiles = append(profiles, mp.toDomain())
	}
	return profiles, cur.Err()
}

func (r *ProfileRepository) Update(ctx context.Context, id string, upd ports.ProfileUpdate) (*domain.Profile, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProfileNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Type != nil {
		set["type"] = string(*upd.Type)
	}
	if upd.AgeRestriction != nil {
		set["age_restriction"] = *upd.AgeRestriction
	}
	if upd.Avatar != nil {
		set["avatar"] = *upd.Avatar
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mp mongoProfile
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return mp.toDomain(), nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) (*domain.Profile, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProfileNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mp mongoProfile
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("delete profile: %w", err)
	}
	return mp.toDomain(), nil
}

// AddToWatchlist inserts with a guard on membership so that the modified
// count distinguishes "added" from "already present".
func (r *ProfileRepository) AddToWatchlist(ctx context.Context, profileID, movieID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(profileID)
	if err != nil {
		return false, domain.ErrProfileNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid, "watchlist": bson.M{"$ne": movieID}},
		bson.M{
			"$addToSet": bson.M{"watchlist": movieID},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, fmt.Errorf("watchlist add: %w", err)
	}
	if res.MatchedCount == 0 {
		// Either the profile does not exist or the movie is already listed.
		// Disambiguate with a direct lookup.
		if _, err := r.FindByID(ctx, profileID); err != nil {
			return false, err
		}
		return false, nil
	}
	return res.ModifiedCount > 0, nil
}

func (r *ProfileRepository) RemoveFromWatchlist(ctx context.Context, profileID, movieID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(profileID)
	if err != nil {
		return false, domain.ErrProfileNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// No updated_at here: the modified count must reflect the pull alone,
	// otherwise a no-op removal would report as removed.
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$pull": bson.M{"watchlist": movieID}},
	)
	if err != nil {
		return false, fmt.Errorf("watchlist remove: %w", err)
	}
	if res.MatchedCount == 0 {
		return false, domain.ErrProfileNotFound
	}
	return res.ModifiedCount > 0, nil
}

// WatchlistTotal sums the watchlist sizes of every profile in one pass.
func (r *ProfileRepository) WatchlistTotal(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{
			"_id": nil,
			"total": bson.M{"$sum": bson.M{
				"$size": bson.M{"$ifNull": bson.A{"$watchlist", bson.A{}}},
			}},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("watchlist total: %w", err)
	}
	defer cur.Close(ctx)

	var row struct {
		Total int64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, fmt.Errorf("decode watchlist total: %w", err)
		}
	}
	return row.Total, cur.Err()
}
