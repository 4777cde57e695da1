package service

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"portfolio/internal/github"
	"portfolio/pkg/apperr"
)

const topRepoLimit = 6

// GitHubAPI is the upstream the profile proxy reads from.
type GitHubAPI interface {
	User(ctx context.Context, username string) (*github.User, error)
	Repos(ctx context.Context, username string) ([]github.Repo, error)
}

type GitHubProfile struct {
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Bio         string    `json:"bio"`
	AvatarURL   string    `json:"avatarUrl"`
	HTMLURL     string    `json:"htmlUrl"`
	Blog        string    `json:"blog,omitempty"`
	Location    string    `json:"location,omitempty"`
	Company     string    `json:"company,omitempty"`
	PublicRepos int       `json:"publicRepos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"createdAt"`
}

type GitHubRepo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"htmlUrl"`
	Homepage    string    `json:"homepage,omitempty"`
	Language    string    `json:"language"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Fork        bool      `json:"fork"`
	Topics      []string  `json:"topics"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type GitHubStats struct {
	Profile     GitHubProfile  `json:"profile"`
	TotalStars  int            `json:"totalStars"`
	TotalForks  int            `json:"totalForks"`
	OwnRepos    int            `json:"ownRepos"`
	Languages   map[string]int `json:"languages"`
	TopRepos    []GitHubRepo   `json:"topRepos"`
	RecentRepos []GitHubRepo   `json:"recentRepos"`
}

// GitHubService proxies the site owner's public GitHub data. Any upstream
// failure is reported the same way.
type GitHubService struct {
	api      GitHubAPI
	username string
}

func NewGitHubService(api GitHubAPI, username string) *GitHubService {
	return &GitHubService{api: api, username: username}
}

func upstreamErr(err error) error {
	return apperr.Upstream("failed to fetch GitHub data", err)
}

func (s *GitHubService) Profile(ctx context.Context) (*GitHubProfile, error) {
	u, err := s.api.User(ctx, s.username)
	if err != nil {
		return nil, upstreamErr(err)
	}
	p := toProfile(u)
	return &p, nil
}

func (s *GitHubService) Repos(ctx context.Context) ([]GitHubRepo, error) {
	repos, err := s.api.Repos(ctx, s.username)
	if err != nil {
		return nil, upstreamErr(err)
	}
	out := toRepos(repos)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// Stats fetches profile and repositories concurrently and derives totals.
// Forks are excluded from the totals and the language histogram.
func (s *GitHubService) Stats(ctx context.Context) (*GitHubStats, error) {
	var (
		user  *github.User
		repos []github.Repo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := s.api.User(gctx, s.username)
		user = u
		return err
	})
	g.Go(func() error {
		r, err := s.api.Repos(gctx, s.username)
		repos = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, upstreamErr(err)
	}

	st := &GitHubStats{Profile: toProfile(user), Languages: map[string]int{}}
	var own []GitHubRepo
	for _, r := range toRepos(repos) {
		if r.Fork {
			continue
		}
		own = append(own, r)
		st.TotalStars += r.Stars
		st.TotalForks += r.Forks
		if r.Language != "" {
			st.Languages[r.Language]++
		}
	}
	st.OwnRepos = len(own)

	byStars := append([]GitHubRepo(nil), own...)
	sort.SliceStable(byStars, func(i, j int) bool { return byStars[i].Stars > byStars[j].Stars })
	st.TopRepos = firstN(byStars, topRepoLimit)

	byUpdate := append([]GitHubRepo(nil), own...)
	sort.SliceStable(byUpdate, func(i, j int) bool { return byUpdate[i].UpdatedAt.After(byUpdate[j].UpdatedAt) })
	st.RecentRepos = firstN(byUpdate, topRepoLimit)
	return st, nil
}

func firstN(r []GitHubRepo, n int) []GitHubRepo {
	if len(r) > n {
		r = r[:n]
	}
	if r == nil {
		return []GitHubRepo{}
	}
	return r
}

func toProfile(u *github.User) GitHubProfile {
	return GitHubProfile{
		Login:       u.Login,
		Name:        u.Name,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		HTMLURL:     u.HTMLURL,
		Blog:        u.Blog,
		Location:    u.Location,
		Company:     u.Company,
		PublicRepos: u.PublicRepos,
		Followers:   u.Followers,
		Following:   u.Following,
		CreatedAt:   u.CreatedAt,
	}
}

func toRepos(repos []github.Repo) []GitHubRepo {
	out := make([]GitHubRepo, 0, len(repos))
	for _, r := range repos {
		out = append(out, GitHubRepo{
			Name:        r.Name,
			Description: r.Description,
			HTMLURL:     r.HTMLURL,
			Homepage:    r.Homepage,
			Language:    r.Language,
			Stars:       r.StargazersCount,
			Forks:       r.ForksCount,
			Fork:        r.Fork,
			Topics:      nonNil(r.Topics),
			UpdatedAt:   r.UpdatedAt,
		})
	}
	return out
}
