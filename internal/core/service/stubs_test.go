package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cineapp/catalog-api/internal/core/domain"
	"github.com/cineapp/catalog-api/internal/core/ports"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// --- users ---

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Profiles = append([]string(nil), u.Profiles...)
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.nextID++
	clone := cloneUser(user)
	clone.ID = fmt.Sprintf("user-%d", r.nextID)
	r.users[clone.ID] = clone
	return cloneUser(clone), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email && !u.IsDeleted {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok || u.IsDeleted {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) List(_ context.Context, f ports.ListUsersFilter) ([]*domain.User, int64, error) {
	matches := []*domain.User{}
	for _, u := range r.users {
		if u.IsDeleted {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.Search != "" && !strings.Contains(u.Username, f.Search) && !strings.Contains(u.Email, f.Search) {
			continue
		}
		matches = append(matches, cloneUser(u))
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].CreatedAt.After(matches[j].CreatedAt) })

	total := int64(len(matches))
	start := (f.Page - 1) * f.Limit
	if start >= len(matches) {
		return []*domain.User{}, total, nil
	}
	end := start + f.Limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], total, nil
}

func (r *stubUserRepo) Update(_ context.Context, id string, upd ports.UserUpdate) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok || u.IsDeleted {
		return nil, domain.ErrUserNotFound
	}
	if upd.Username != nil {
		u.Username = *upd.Username
	}
	if upd.Email != nil {
		u.Email = *upd.Email
	}
	if upd.Role != nil {
		u.Role = *upd.Role
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) SoftDelete(_ context.Context, id string) error {
	u, ok := r.users[id]
	if !ok || u.IsDeleted {
		return domain.ErrUserNotFound
	}
	u.IsDeleted = true
	u.DeletedAt = time.Now().UTC()
	return nil
}

func (r *stubUserRepo) AddProfile(_ context.Context, userID, profileID string) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Profiles = append(u.Profiles, profileID)
	return nil
}

func (r *stubUserRepo) RemoveProfile(_ context.Context, userID, profileID string) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	kept := u.Profiles[:0]
	for _, p := range u.Profiles {
		if p != profileID {
			kept = append(kept, p)
		}
	}
	u.Profiles = kept
	return nil
}

func (r *stubUserRepo) SetResetToken(_ context.Context, userID, tokenHash string, expiry time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.ResetTokenHash = tokenHash
	u.ResetTokenExpiry = expiry
	return nil
}

func (r *stubUserRepo) ConsumeResetToken(_ context.Context, tokenHash string, now time.Time, newPasswordHash string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ResetTokenHash == tokenHash && u.ResetTokenExpiry.After(now) {
			u.PasswordHash = newPasswordHash
			u.ResetTokenHash = ""
			u.ResetTokenExpiry = time.Time{}
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrResetTokenInvalid
}

// --- profiles ---

type stubProfileRepo struct {
	profiles map[string]*domain.Profile
	nextID   int
}

func newStubProfileRepo() *stubProfileRepo {
	return &stubProfileRepo{profiles: make(map[string]*domain.Profile)}
}

func cloneProfile(p *domain.Profile) *domain.Profile {
	if p == nil {
		return nil
	}
	clone := *p
	clone.Watchlist = append([]string(nil), p.Watchlist...)
	return &clone
}

func (r *stubProfileRepo) Create(_ context.Context, p *domain.Profile) (*domain.Profile, error) {
	r.nextID++
	clone := cloneProfile(p)
	clone.ID = fmt.Sprintf("profile-%d", r.nextID)
	r.profiles[clone.ID] = clone
	return cloneProfile(clone), nil
}

func (r *stubProfileRepo) FindByID(_ context.Context, id string) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return cloneProfile(p), nil
}

func (r *stubProfileRepo) FindByOwner(_ context.Context, ownerID string) ([]*domain.Profile, error) {
	out := []*domain.Profile{}
	for _, p := range r.profiles {
		if p.OwnerID == ownerID {
			out = append(out, cloneProfile(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *stubProfileRepo) Update(_ context.Context, id string, upd ports.ProfileUpdate) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	if upd.Name != nil {
		p.Name = *upd.Name
	}
	if upd.Type != nil {
		p.Type = *upd.Type
	}
	if upd.AgeRestriction != nil {
		p.AgeRestriction = *upd.AgeRestriction
	}
	if upd.Avatar != nil {
		p.Avatar = *upd.Avatar
	}
	return cloneProfile(p), nil
}

func (r *stubProfileRepo) Delete(_ context.Context, id string) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	delete(r.profiles, id)
	return cloneProfile(p), nil
}

func (r *stubProfileRepo) AddToWatchlist(_ context.Context, profileID, movieID string) (bool, error) {
	p, ok := r.profiles[profileID]
	if !ok {
		return false, domain.ErrProfileNotFound
	}
	for _, m := range p.Watchlist {
		if m == movieID {
			return false, nil
		}
	}
	p.Watchlist = append(p.Watchlist, movieID)
	return true, nil
}

func (r *stubProfileRepo) RemoveFromWatchlist(_ context.Context, profileID, movieID string) (bool, error) {
	p, ok := r.profiles[profileID]
	if !ok {
		return false, domain.ErrProfileNotFound
	}
	for i, m := range p.Watchlist {
		if m == movieID {
			p.Watchlist = append(p.Watchlist[:i], p.Watchlist[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *stubProfileRepo) WatchlistTotal(_ context.Context) (int64, error) {
	var total int64
	for _, p := range r.profiles {
		total += int64(len(p.Watchlist))
	}
	return total, nil
}

// --- movies ---

type stubMovieRepo struct {
	movies map[string]*domain.Movie
	nextID int
}

func newStubMovieRepo() *stubMovieRepo {
	return &stubMovieRepo{movies: make(map[string]*domain.Movie)}
}

func cloneMovie(m *domain.Movie) *domain.Movie {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}

func (r *stubMovieRepo) Create(_ context.Context, m *domain.Movie) (*domain.Movie, error) {
	r.nextID++
	clone := cloneMovie(m)
	clone.ID = fmt.Sprintf("movie-%d", r.nextID)
	r.movies[clone.ID] = clone
	return cloneMovie(clone), nil
}

func (r *stubMovieRepo) FindByID(_ context.Context, id string) (*domain.Movie, error) {
	m, ok := r.movies[id]
	if !ok {
		return nil, domain.ErrMovieNotFound
	}
	return cloneMovie(m), nil
}

func movieMatches(m *domain.Movie, f ports.CatalogFilter) bool {
	if f.Title != "" && !strings.Contains(strings.ToLower(m.Title), strings.ToLower(f.Title)) {
		return false
	}
	if f.Genre != "" {
		found := false
		for _, g := range m.Genre {
			if strings.Contains(strings.ToLower(g), strings.ToLower(f.Genre)) {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	if f.Year != 0 && m.ReleaseYear != f.Year {
		return false
	}
	if f.Classification != "" && m.Classification != f.Classification {
		return false
	}
	if f.MinRating != nil && m.Rating < *f.MinRating {
		return false
	}
	if f.MaxRating != nil && m.Rating > *f.MaxRating {
		return false
	}
	if f.FromYear != nil && m.ReleaseYear < *f.FromYear {
		return false
	}
	if f.ToYear != nil && m.ReleaseYear > *f.ToYear {
		return false
	}
	if f.AddedBy != "" && m.AddedBy != f.AddedBy {
		return false
	}
	if f.ChildSafe && m.Classification != domain.ClassATP && m.AgeRestriction > domain.ChildAgeCeiling {
		return false
	}
	return true
}

func (r *stubMovieRepo) List(_ context.Context, f ports.CatalogFilter) ([]*domain.Movie, int64, error) {
	matches := []*domain.Movie{}
	for _, m := range r.movies {
		if movieMatches(m, f) {
			matches = append(matches, cloneMovie(m))
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].ID > matches[j].ID
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := int64(len(matches))
	start := (f.Page - 1) * f.Limit
	if start >= len(matches) {
		return []*domain.Movie{}, total, nil
	}
	end := start + f.Limit
	if end > len(matches) {
		end = len(matches)
	}
	return matches[start:end], total, nil
}

func (r *stubMovieRepo) Update(_ context.Context, id string, upd ports.MovieUpdate, ageRestriction *int) (*domain.Movie, error) {
	m, ok := r.movies[id]
	if !ok {
		return nil, domain.ErrMovieNotFound
	}
	if upd.Title != nil {
		m.Title = *upd.Title
	}
	if upd.Rating != nil {
		m.Rating = *upd.Rating
	}
	if upd.Classification != nil {
		m.Classification = *upd.Classification
	}
	if ageRestriction != nil {
		m.AgeRestriction = *ageRestriction
	}
	return cloneMovie(m), nil
}

func (r *stubMovieRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.movies[id]; !ok {
		return domain.ErrMovieNotFound
	}
	delete(r.movies, id)
	return nil
}

func (r *stubMovieRepo) DeleteByTitle(_ context.Context, title string) error {
	for id, m := range r.movies {
		if strings.EqualFold(m.Title, title) {
			delete(r.movies, id)
			return nil
		}
	}
	return domain.ErrMovieNotFound
}

func (r *stubMovieRepo) SearchByField(_ context.Context, field, value string) ([]*domain.Movie, error) {
	out := []*domain.Movie{}
	for _, m := range r.movies {
		var hit bool
		switch field {
		case "title":
			hit = strings.Contains(strings.ToLower(m.Title), strings.ToLower(value))
		case "director":
			hit = strings.Contains(strings.ToLower(m.Director), strings.ToLower(value))
		case "classification":
			hit = strings.EqualFold(string(m.Classification), value)
		}
		if hit {
			out = append(out, cloneMovie(m))
		}
	}
	return out, nil
}

func (r *stubMovieRepo) StatsByUser(_ context.Context, userID string) (int64, float64, float64, error) {
	var count int64
	var durSum, ratingSum float64
	for _, m := range r.movies {
		if m.AddedBy == userID {
			count++
			durSum += float64(m.Duration)
			ratingSum += m.Rating
		}
	}
	if count == 0 {
		return 0, 0, 0, nil
	}
	return count, durSum / float64(count), ratingSum / float64(count), nil
}

func (r *stubMovieRepo) UsageStats(_ context.Context) (int64, []ports.GenreCount, error) {
	counts := map[string]int64{}
	for _, m := range r.movies {
		for _, g := range m.Genre {
			counts[g]++
		}
	}
	byGenre := []ports.GenreCount{}
	for g, c := range counts {
		byGenre = append(byGenre, ports.GenreCount{Genre: g, Count: c})
	}
	sort.Slice(byGenre, func(i, j int) bool {
		if byGenre[i].Count == byGenre[j].Count {
			return byGenre[i].Genre < byGenre[j].Genre
		}
		return byGenre[i].Count > byGenre[j].Count
	})
	return int64(len(r.movies)), byGenre, nil
}

// --- mail and throttle ---

type stubMailer struct {
	sent []string // reset URLs in send order
}

func (m *stubMailer) SendPasswordReset(_ context.Context, _, resetURL string) error {
	m.sent = append(m.sent, resetURL)
	return nil
}

type stubThrottle struct {
	allow bool
	calls int
}

func (t *stubThrottle) Allow(_ context.Context, _ string) (bool, error) {
	t.calls++
	return t.allow, nil
}
