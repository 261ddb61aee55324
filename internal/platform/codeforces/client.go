package codeforces

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"cf_buddy/internal/common"
	"cf_buddy/internal/domain/model"
)

type Options struct {
	BaseURL         string
	Key             string
	Secret          string
	Timeout         time.Duration
	SubmissionCount int
	HTTPClient      *http.Client
}

// Client talks to the Codeforces public API. Every call is bounded by
// Options.Timeout; upstream failures are mapped onto the common error set.
type Client struct {
	baseURL         string
	key             string
	secret          string
	timeout         time.Duration
	submissionCount int
	http            *http.Client
	now             func() time.Time
	nonce           func() int
}

func NewClient(opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.SubmissionCount <= 0 {
		opts.SubmissionCount = 10000
	}
	return &Client{
		baseURL:         strings.TrimRight(opts.BaseURL, "/"),
		key:             opts.Key,
		secret:          opts.Secret,
		timeout:         opts.Timeout,
		submissionCount: opts.SubmissionCount,
		http:            opts.HTTPClient,
		now:             time.Now,
		nonce:           func() int { return 100000 + rand.IntN(900000) },
	}
}

type envelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

type apiProblem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    *int     `json:"rating"`
	Tags      []string `json:"tags"`
}

func (p apiProblem) toModel() model.Problem {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.Problem{ContestID: p.ContestID, Index: p.Index, Name: p.Name, Rating: p.Rating, Tags: tags}
}

type apiSubmission struct {
	ID                  int64      `json:"id"`
	ContestID           int        `json:"contestId"`
	CreationTimeSeconds int64      `json:"creationTimeSeconds"`
	Problem             apiProblem `json:"problem"`
	Verdict             string     `json:"verdict"`
}

type apiRatingChange struct {
	ContestID               int    `json:"contestId"`
	ContestName             string `json:"contestName"`
	Rank                    int    `json:"rank"`
	RatingUpdateTimeSeconds int64  `json:"ratingUpdateTimeSeconds"`
	OldRating               int    `json:"oldRating"`
	NewRating               int    `json:"newRating"`
}

// Problems returns the full problem set.
func (c *Client) Problems(ctx context.Context) ([]model.Problem, error) {
	var res struct {
		Problems []apiProblem `json:"problems"`
	}
	if err := c.call(ctx, "problemset.problems", nil, &res); err != nil {
		return nil, err
	}
	out := make([]model.Problem, 0, len(res.Problems))
	for _, p := range res.Problems {
		out = append(out, p.toModel())
	}
	return out, nil
}

// Submissions returns the judged attempts of handle, newest first.
func (c *Client) Submissions(ctx context.Context, handle string) ([]model.Submission, error) {
	params := map[string]string{
		"handle": handle,
		"from":   "1",
		"count":  strconv.Itoa(c.submissionCount),
	}
	var res []apiSubmission
	if err := c.call(ctx, "user.status", params, &res); err != nil {
		return nil, err
	}
	out := make([]model.Submission, 0, len(res))
	for _, s := range res {
		p := s.Problem.toModel()
		if p.ContestID == 0 {
			p.ContestID = s.ContestID
		}
		out = append(out, model.Submission{
			ID:        s.ID,
			Problem:   p,
			Verdict:   model.Verdict(s.Verdict),
			CreatedAt: time.Unix(s.CreationTimeSeconds, 0).UTC(),
		})
	}
	return out, nil
}

func (c *Client) RatingHistory(ctx context.Context, handle string) ([]model.RatingChange, error) {
	var res []apiRatingChange
	if err := c.call(ctx, "user.rating", map[string]string{"handle": handle}, &res); err != nil {
		return nil, err
	}
	out := make([]model.RatingChange, 0, len(res))
	for _, r := range res {
		out = append(out, model.RatingChange{
			ContestID:   r.ContestID,
			ContestName: r.ContestName,
			Rank:        r.Rank,
			OldRating:   r.OldRating,
			NewRating:   r.NewRating,
			UpdatedAt:   time.Unix(r.RatingUpdateTimeSeconds, 0).UTC(),
		})
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, method string, params map[string]string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(method, params), nil)
	if err != nil {
		return fmt.Errorf("codeforces %s: %w", method, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("codeforces %s: %w", method, classifyTransport(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("codeforces %s: read body: %w", method, classifyTransport(err))
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("codeforces %s: %w", method, common.ErrRateLimited)
	}
	if resp.StatusCode >= 500 {
		return fmt.Errorf("codeforces %s: status %d: %w", method, resp.StatusCode, common.ErrServiceUnavailable)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("codeforces %s: status %d: %w", method, resp.StatusCode, common.ErrValidation)
		}
		return fmt.Errorf("codeforces %s: decode: %w", method, common.ErrServiceUnavailable)
	}
	if env.Status != "OK" {
		return fmt.Errorf("codeforces %s: %s: %w", method, env.Comment, classifyComment(env.Comment))
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("codeforces %s: decode result: %w", method, common.ErrServiceUnavailable)
	}
	return nil
}

func (c *Client) buildURL(method string, params map[string]string) string {
	values := make(map[string]string, len(params)+3)
	for k, v := range params {
		values[k] = v
	}
	if c.key != "" && c.secret != "" {
		values["apiKey"] = c.key
		values["time"] = strconv.FormatInt(c.now().Unix(), 10)
		values["apiSig"] = c.sign(method, values)
	}

	q := url.Values{}
	for k, v := range values {
		q.Set(k, v)
	}
	u := c.baseURL + "/" + method
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// sign computes apiSig = rand + hex(sha512("rand/method?k1=v1&k2=v2#secret"))
// with parameters sorted by key.
func (c *Client) sign(method string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	nonce := strconv.Itoa(c.nonce())
	sum := sha512.Sum512([]byte(nonce + "/" + method + "?" + strings.Join(pairs, "&") + "#" + c.secret))
	return nonce + hex.EncodeToString(sum[:])
}

func classifyTransport(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", common.ErrUpstreamTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %v", common.ErrServiceUnavailable, err)
}

func classifyComment(comment string) error {
	lower := strings.ToLower(comment)
	switch {
	case strings.Contains(lower, "not found"):
		return common.ErrNotFound
	case strings.Contains(lower, "call limit exceeded"):
		return common.ErrRateLimited
	}
	return common.ErrValidation
}
