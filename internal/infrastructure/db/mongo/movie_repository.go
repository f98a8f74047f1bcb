package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

const moviesCollection = "movies"

// MovieRepository implements ports.MovieRepository on MongoDB.
type MovieRepository struct {
	coll *mongo.Collection
}

func NewMovieRepository(db *mongo.Database) *MovieRepository {
	return &MovieRepository{coll: db.Collection(moviesCollection)}
}

type mongoMovie struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"`
	Title              string             `bson:"title"`
	Genre              []string           `bson:"genre"`
	Director           string             `bson:"director,omitempty"`
	Cast               []string           `bson:"cast"`
	ReleaseYear        int                `bson:"release_year"`
	Duration           int                `bson:"duration,omitempty"`
	Rating             float64            `bson:"rating"`
	Classification     string             `bson:"classification"`
	AgeRestriction     int                `bson:"age_restriction"`
	Synopsis           string             `bson:"synopsis,omitempty"`
	PosterURL          string             `bson:"poster_url,omitempty"`
	TrailerURL         string             `bson:"trailer_url,omitempty"`
	StreamURL          string             `bson:"stream_url,omitempty"`
	DownloadURL        string             `bson:"download_url,omitempty"`
	Language           string             `bson:"language"`
	Subtitles          []string           `bson:"subtitles"`
	AvailableLanguages []string           `bson:"available_languages"`
	AddedBy            string             `bson:"added_by,omitempty"`
	CreatedAt          time.Time          `bson:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"`
}

func (mm *mongoMovie) toDomain() *domain.Movie {
	return &domain.Movie{
		ID:                 mm.ID.Hex(),
		Title:              mm.Title,
		Genre:              orEmpty(mm.Genre),
		Director:           mm.Director,
		Cast:               orEmpty(mm.Cast),
		ReleaseYear:        mm.ReleaseYear,
		Duration:           mm.Duration,
		Rating:             mm.Rating,
		Classification:     domain.Classification(mm.Classification),
		AgeRestriction:     mm.AgeRestriction,
		Synopsis:           mm.Synopsis,
		PosterURL:          mm.PosterURL,
		TrailerURL:         mm.TrailerURL,
		StreamURL:          mm.StreamURL,
		DownloadURL:        mm.DownloadURL,
		Language:           mm.Language,
		Subtitles:          orEmpty(mm.Subtitles),
		AvailableLanguages: orEmpty(mm.AvailableLanguages),
		AddedBy:            mm.AddedBy,
		CreatedAt:          mm.CreatedAt,
		UpdatedAt:          mm.UpdatedAt,
	}
}

func fromDomainMovie(m *domain.Movie) mongoMovie {
	return mongoMovie{
		Title:              m.Title,
		Genre:              orEmpty(m.Genre),
		Director:           m.Director,
		Cast:               orEmpty(m.Cast),
		ReleaseYear:        m.ReleaseYear,
		Duration:           m.Duration,
		Rating:             m.Rating,
		Classification:     string(m.Classification),
		AgeRestriction:     m.AgeRestriction,
		Synopsis:           m.Synopsis,
		PosterURL:          m.PosterURL,
		TrailerURL:         m.TrailerURL,
		StreamURL:          m.StreamURL,
		DownloadURL:        m.DownloadURL,
		Language:           m.Language,
		Subtitles:          orEmpty(m.Subtitles),
		AvailableLanguages: orEmpty(m.AvailableLanguages),
		AddedBy:            m.AddedBy,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *MovieRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "added_by", Value: 1}}},
		{Keys: bson.D{{Key: "age_restriction", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

func (r *MovieRepository) Create(ctx context.Context, m *domain.Movie) (*domain.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.InsertOne(ctx, fromDomainMovie(m))
	if err != nil {
		return nil, fmt.Errorf("insert movie: %w", err)
	}

	created := *m
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *MovieRepository) FindByID(ctx context.Context, id string) (*domain.Movie, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMovieNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mm mongoMovie
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mm); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("find movie: %w", err)
	}
	return mm.toDomain(), nil
}

// buildFilter translates a CatalogFilter into a Mongo query. All provided
// criteria are ANDed; the child visibility rule is appended last so caller
// criteria can only narrow it, never widen it.
func buildFilter(f ports.CatalogFilter) bson.M {
	conds := []bson.M{}

	if f.Title != "" {
		conds = append(conds, bson.M{"title": bson.M{"$regex": regexp.QuoteMeta(f.Title), "$options": "i"}})
	}
	if f.Genre != "" {
		conds = append(conds, bson.M{"genre": bson.M{"$regex": regexp.QuoteMeta(f.Genre), "$options": "i"}})
	}
	if f.Year != 0 {
		conds = append(conds, bson.M{"release_year": f.Year})
	}
	if f.Classification != "" {
		conds = append(conds, bson.M{"classification": string(f.Classification)})
	}
	if f.MinRating != nil {
		conds = append(conds, bson.M{"rating": bson.M{"$gte": *f.MinRating}})
	}
	if f.MaxRating != nil {
		conds = append(conds, bson.M{"rating": bson.M{"$lte": *f.MaxRating}})
	}
	if f.FromYear != nil {
		conds = append(conds, bson.M{"release_year": bson.M{"$gte": *f.FromYear}})
	}
	if f.ToYear != nil {
		conds = append(conds, bson.M{"release_year": bson.M{"$lte": *f.ToYear}})
	}
	if f.AddedBy != "" {
		conds = append(conds, bson.M{"added_by": f.AddedBy})
	}
	if f.ChildSafe {
		conds = append(conds, bson.M{"$or": []bson.M{
			{"classification": string(domain.ClassATP)},
			{"age_restriction": bson.M{"$lte": domain.ChildAgeCeiling}},
		}})
	}

	switch len(conds) {
	case 0:
		return bson.M{}
	case 1:
		return conds[0]
	}
	return bson.M{"$and": conds}
}

func (r *MovieRepository) List(ctx context.Context, f ports.CatalogFilter) ([]*domain.Movie, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := buildFilter(f)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(pageSkip(f.Page, f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list movies: %w", err)
	}
	defer cur.Close(ctx)

	movies, err := decodeMovies(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

func decodeMovies(ctx context.Context, cur *mongo.Cursor) ([]*domain.Movie, error) {
	movies := []*domain.Movie{}
	for cur.Next(ctx) {
		var mm mongoMovie
		if err := cur.Decode(&mm); err != nil {
			return nil, fmt.Errorf("decode movie: %w", err)
		}
		movies = append(movies, mm.toDomain())
	}
	return movies, cur.Err()
}

func (r *MovieRepository) Update(ctx context.Context, id string, upd ports.MovieUpdate, ageRestriction *int) (*domain.Movie, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMovieNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Genre != nil {
		set["genre"] = upd.Genre
	}
	if upd.Director != nil {
		set["director"] = *upd.Director
	}
	if upd.Cast != nil {
		set["cast"] = upd.Cast
	}
	if upd.ReleaseYear != nil {
		set["release_year"] = *upd.ReleaseYear
	}
	if upd.Duration != nil {
		set["duration"] = *upd.Duration
	}
	if upd.Rating != nil {
		set["rating"] = *upd.Rating
	}
	if upd.Classification != nil {
		set["classification"] = string(*upd.Classification)
	}
	if ageRestriction != nil {
		set["age_restriction"] = *ageRestriction
	}
	if upd.Synopsis != nil {
		set["synopsis"] = *upd.Synopsis
	}
	if upd.PosterURL != nil {
		set["poster_url"] = *upd.PosterURL
	}
	if upd.TrailerURL != nil {
		set["trailer_url"] = *upd.TrailerURL
	}
	if upd.StreamURL != nil {
		set["stream_url"] = *upd.StreamURL
	}
	if upd.DownloadURL != nil {
		set["download_url"] = *upd.DownloadURL
	}
	if upd.Language != nil {
		set["language"] = *upd.Language
	}
	if upd.Subtitles != nil {
		set["subtitles"] = upd.Subtitles
	}
	if upd.AvailableLanguages != nil {
		set["available_languages"] = upd.AvailableLanguages
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mm mongoMovie
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&mm)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrMovieNotFound
		}
		return nil, fmt.Errorf("update movie: %w", err)
	}
	return mm.toDomain(), nil
}

func (r *MovieRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrMovieNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete movie: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMovieNotFound
	}
	return nil
}

// DeleteByTitle removes the first exact (case-insensitive) title match.
func (r *MovieRepository) DeleteByTitle(ctx context.Context, title string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"title": bson.M{
		"$regex":   "^" + regexp.QuoteMeta(title) + "$",
		"$options": "i",
	}}
	res, err := r.coll.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete movie by title: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrMovieNotFound
	}
	return nil
}

func (r *MovieRepository) SearchByField(ctx context.Context, field, value string) ([]*domain.Movie, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{field: bson.M{"$regex": regexp.QuoteMeta(value), "$options": "i"}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search movies: %w", err)
	}
	defer cur.Close(ctx)

	return decodeMovies(ctx, cur)
}

func (r *MovieRepository) StatsByUser(ctx context.Context, userID string) (int64, float64, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"added_by": userID}}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"count":        bson.M{"$sum": 1},
			"avg_duration": bson.M{"$avg": "$duration"},
			"avg_rating":   bson.M{"$avg": "$rating"},
		}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("movie stats: %w", err)
	}
	defer cur.Close(ctx)

	var row struct {
		Count       int64   `bson:"count"`
		AvgDuration float64 `bson:"avg_duration"`
		AvgRating   float64 `bson:"avg_rating"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&row); err != nil {
			return 0, 0, 0, fmt.Errorf("decode movie stats: %w", err)
		}
	}
	return row.Count, row.AvgDuration, row.AvgRating, cur.Err()
}

// UsageStats feeds the owner usage report: the total catalog size plus the
// number of movies carrying each genre, most common first. Genre is an array
// field, so each movie counts once per genre it carries.
func (r *MovieRepository) UsageStats(ctx context.Context) (int64, []ports.GenreCount, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, nil, fmt.Errorf("count movies: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$genre"}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$genre",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, nil, fmt.Errorf("genre stats: %w", err)
	}
	defer cur.Close(ctx)

	byGenre := []ports.GenreCount{}
	for cur.Next(ctx) {
		var row struct {
			Genre string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cur.Decode(&row); err != nil {
			return 0, nil, fmt.Errorf("decode genre stats: %w", err)
		}
		byGenre = append(byGenre, ports.GenreCount{Genre: row.Genre, Count: row.Count})
	}
	return total, byGenre, cur.Err()
}
