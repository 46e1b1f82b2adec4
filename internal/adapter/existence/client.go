package existence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/burenotti/go_classes_backend/internal/domain"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrServiceUnavailable = domain.NewError(domain.ErrDependencyUnavailable, "dependency service unavailable")
	ErrUnknownKind        = errors.New("unknown entity kind")
)

type Kind string

const (
	KindTrainer Kind = "trainer"
	KindTeam    Kind = "team"
	KindMember  Kind = "member"
)

type Config struct {
	TrainerBaseURL string
	TeamBaseURL    string
	MemberBaseURL  string
	Timeout        time.Duration
}

// Client asks the trainer, team and member services whether an id exists.
type Client struct {
	baseURLs map[Kind]string
	http     *http.Client
	logger   *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURLs: map[Kind]string{
			KindTrainer: strings.TrimRight(cfg.TrainerBaseURL, "/"),
			KindTeam:    strings.TrimRight(cfg.TeamBaseURL, "/"),
			KindMember:  strings.TrimRight(cfg.MemberBaseURL, "/"),
		},
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) TrainerExists(ctx context.Context, trainerID string) (bool, error) {
	return c.Exists(ctx, KindTrainer, trainerID)
}

func (c *Client) TeamExists(ctx context.Context, teamID string) (bool, error) {
	return c.Exists(ctx, KindTeam, teamID)
}

func (c *Client) MemberExists(ctx context.Context, memberID string) (bool, error) {
	return c.Exists(ctx, KindMember, memberID)
}

type existsResponse struct {
	Existe *bool `json:"existe"`
	Exists *bool `json:"exists"`
}

// Exists calls GET <base>/<id>/existe. A missing or null flag means the entity
// does not exist. Any failure to get an answer is ErrServiceUnavailable.
func (c *Client) Exists(ctx context.Context, kind Kind, id string) (bool, error) {
	base, ok := c.baseURLs[kind]
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	endpoint := base + "/" + url.PathEscape(id) + "/existe"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, c.unavailable(kind, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, c.unavailable(kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, c.unavailable(kind, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var body existsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, c.unavailable(kind, err)
	}

	switch {
	case body.Existe != nil:
		return *body.Existe, nil
	case body.Exists != nil:
		return *body.Exists, nil
	default:
		return false, nil
	}
}

func (c *Client) unavailable(kind Kind, cause error) error {
	c.logger.Error("existence check failed", "kind", string(kind), "error", cause)
	return fmt.Errorf("%w: %s service: %w", ErrServiceUnavailable, kind, cause)
}
