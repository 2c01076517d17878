package rainclassroom

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lessonvault/internal/catalog"
	"lessonvault/internal/logging"
	"lessonvault/internal/services"
)

// ErrUnauthorized reports that the platform rejected the session.
var ErrUnauthorized = errors.New("session rejected by platform")

// Client implements catalog.Source against the platform's web API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ catalog.Source = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "rainclassroom")
	}
}

// New creates a client for host using an authenticated session.
func New(host string, session catalog.Session, opts ...Option) (*Client, error) {
	base, err := BaseURL(host)
	if err != nil {
		return nil, err
	}
	if session.Client == nil {
		return nil, errors.New("authenticated http client required")
	}
	client := &Client{
		baseURL:    base,
		httpClient: session.Client,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// BaseURL turns a configured host into an origin URL. Bare hosts get https.
func BaseURL(host string) (string, error) {
	host = strings.TrimRight(strings.TrimSpace(host), "/")
	if host == "" {
		return "", errors.New("platform host required")
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	parsed, err := url.Parse(host)
	if err != nil || parsed.Host == "" {
		return "", fmt.Errorf("invalid platform host %q", host)
	}
	return parsed.Scheme + "://" + parsed.Host, nil
}

// ListActive returns courses on the user's current course list.
func (c *Client) ListActive(ctx context.Context) ([]catalog.Course, error) {
	var payload activeCoursesPayload
	if err := c.getJSON(ctx, "/v2/api/web/courses/list", url.Values{"identity": {"2"}}, false, &payload); err != nil {
		return nil, err
	}
	courses := make([]catalog.Course, 0, len(payload.List))
	for _, item := range payload.List {
		courses = append(courses, catalog.Course{
			ID:          item.ClassroomID.String(),
			Name:        item.Name,
			TeacherName: item.Teacher.Name,
		})
	}
	return courses, nil
}

// ListArchived returns archived courses. Archive records carry the classroom
// ID in "id", which is normalized to the same field as active courses.
func (c *Client) ListArchived(ctx context.Context) ([]catalog.Course, error) {
	var payload archivedCoursesPayload
	if err := c.getJSON(ctx, "/v2/api/web/classroom_archive", nil, false, &payload); err != nil {
		return nil, err
	}
	courses := make([]catalog.Course, 0, len(payload.Classrooms))
	for _, item := range payload.Classrooms {
		courses = append(courses, catalog.Course{
			ID:          item.ID.String(),
			Name:        item.Name,
			TeacherName: item.Teacher.Name,
		})
	}
	return courses, nil
}

// ListActivities returns a course's lessons, newest first.
func (c *Client) ListActivities(ctx context.Context, courseID string) ([]catalog.Lesson, error) {
	if strings.TrimSpace(courseID) == "" {
		return nil, errors.New("course id required")
	}
	params := url.Values{
		"actype": {"14"},
		"page":   {"0"},
		"offset": {"500"},
		"sort":   {"-1"},
	}
	var payload activitiesPayload
	if err := c.getJSON(ctx, "/v2/api/web/logs/learn/"+url.PathEscape(courseID), params, false, &payload); err != nil {
		return nil, err
	}
	lessons := make([]catalog.Lesson, 0, len(payload.Activities))
	for _, item := range payload.Activities {
		lessons = append(lessons, catalog.Lesson{
			CoursewareID: item.CoursewareID.String(),
			Title:        item.Title,
		})
	}
	return lessons, nil
}

// GetReplay returns a lesson's replay segments. A lesson without a recording
// yields an empty slice.
func (c *Client) GetReplay(ctx context.Context, lessonID string) ([]catalog.Segment, error) {
	var payload replayPayload
	if err := c.getJSON(ctx, "/api/v3/lesson-summary/replay", url.Values{"lesson_id": {lessonID}}, true, &payload); err != nil {
		return nil, err
	}
	segments := make([]catalog.Segment, 0, len(payload.Live))
	for _, item := range payload.Live {
		segments = append(segments, catalog.Segment{URL: item.URL, Order: item.Order})
	}
	return segments, nil
}

// GetLessonPresentations lists the decks shown during a lesson.
func (c *Client) GetLessonPresentations(ctx context.Context, lessonID string) ([]catalog.Presentation, error) {
	var payload lessonSummaryPayload
	if err := c.getJSON(ctx, "/api/v3/lesson-summary/student", url.Values{"lesson_id": {lessonID}}, true, &payload); err != nil {
		return nil, err
	}
	decks := make([]catalog.Presentation, 0, len(payload.Presentations))
	for _, item := range payload.Presentations {
		decks = append(decks, catalog.Presentation{ID: item.ID.String(), Title: item.Title})
	}
	return decks, nil
}

// GetSlides returns the pages of one deck.
func (c *Client) GetSlides(ctx context.Context, lessonID, presentationID string) (catalog.SlideSet, error) {
	params := url.Values{
		"presentation_id": {presentationID},
		"lesson_id":       {lessonID},
	}
	var payload presentationPayload
	if err := c.getJSON(ctx, "/api/v3/lesson-summary/student/presentation", params, true, &payload); err != nil {
		return catalog.SlideSet{}, err
	}
	set := catalog.SlideSet{
		Title:  payload.Presentation.Title,
		Slides: make([]catalog.Slide, 0, len(payload.Slides)),
	}
	for _, item := range payload.Slides {
		slide := catalog.Slide{Index: item.Index, Cover: item.Cover}
		if item.Problem != nil {
			slide.Problem = &catalog.Problem{Answers: []string(item.Problem.Content.Answer)}
		}
		set.Slides = append(set.Slides, slide)
	}
	return set, nil
}

// VerifySession confirms the session can read the course list and returns the
// display name when the platform reports one.
func (c *Client) VerifySession(ctx context.Context) (string, error) {
	var info userInfoPayload
	if err := c.getJSON(ctx, "/v/course_meta/user_info", nil, false, &info); err != nil && errors.Is(err, ErrUnauthorized) {
		return "", err
	}
	if _, err := c.ListActive(ctx); err != nil {
		return "", err
	}
	return info.displayName(), nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, v3 bool, out any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if v3 {
		req.AddCookie(&http.Cookie{Name: "xtbz", Value: "ykt"})
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if ctx.Err() != nil {
			return services.Cancelled("catalog", path, ctx.Err())
		}
		return services.Wrap(services.ErrTransient, "catalog", path, fmt.Sprintf("request failed (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	c.logger.Debug("platform request",
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("latency", latency),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s returned %d: %w", path, resp.StatusCode, ErrUnauthorized)
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "catalog", path, "returned 404", nil)
	case resp.StatusCode != http.StatusOK:
		return services.Wrap(services.ErrTransient, "catalog", path, fmt.Sprintf("returned %d", resp.StatusCode), nil)
	}

	var env envelope[json.RawMessage]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return services.Wrap(services.ErrValidation, "catalog", path, "decode response", err)
	}
	if code := firstNonZero(env.Code, env.ErrCode); code != 0 {
		msg := strings.TrimSpace(env.Msg + " " + env.ErrMsg)
		return services.Wrap(services.ErrTransient, "catalog", path, fmt.Sprintf("platform error %d: %s", code, msg), nil)
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return services.Wrap(services.ErrValidation, "catalog", path, "decode data", err)
	}
	return nil
}

func firstNonZero(values ...*int) int {
	for _, v := range values {
		if v != nil && *v != 0 {
			return *v
		}
	}
	return 0
}

// userInfoPayload tolerates both the list and object shapes of user_info.
type userInfoPayload struct {
	name string
}

func (u *userInfoPayload) UnmarshalJSON(data []byte) error {
	type user struct {
		Name string `json:"name"`
	}
	var single user
	if err := json.Unmarshal(data, &single); err == nil {
		u.name = single.Name
		return nil
	}
	var list []user
	if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 {
		u.name = list[0].Name
	}
	return nil
}

func (u userInfoPayload) displayName() string {
	return strings.TrimSpace(u.name)
}
