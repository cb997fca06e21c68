// Package gateway is the outbound HTTP adapter for the assignment system that
// owns work assignments, evaluations and the per-assignment payment lock.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/finwage/payroll_backend/internal/apperrors"
	"github.com/finwage/payroll_backend/internal/core/domain"
	portssvc "github.com/finwage/payroll_backend/internal/core/ports/services"
)

// Client talks to the assignment gateway over JSON/HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// ClientOption is a functional option for configuring the gateway client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new assignment gateway client.
func NewClient(baseURL, apiKey string, options ...ClientOption) *Client {
	client := &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, option := range options {
		option(client)
	}
	return client
}

var _ portssvc.AssignmentGateway = (*Client)(nil)

// rawAssignment mirrors the gateway's wire format. Depending on which upstream
// source produced the record, the same fact can arrive under either of two
// field names; normalize resolves that so the core only ever sees one shape.
type rawAssignment struct {
	AssignmentID   string `json:"assignmentId"`
	ID             string `json:"id"`
	EmployeeID     string `json:"employeeId"`
	EmployeeName   string `json:"employeeName"`
	EmployeeLabel  string `json:"employee"`
	WorkActivityID string `json:"workActivityId"`
	ActivityID     string `json:"activityId"`
	ActivityName   string `json:"workActivityName"`
	ActivityLabel  string `json:"activityName"`
	AssignmentDate string `json:"assignmentDate"`
	Date           string `json:"date"`

	Rate                 *json.Number `json:"rate"`
	DailyRate            *json.Number `json:"dailyRate"`
	GrossAmount          *json.Number `json:"grossAmount"`
	Amount               *json.Number `json:"amount"`
	CompletionPercentage *json.Number `json:"completionPercentage"`
	Completion           *json.Number `json:"completion"`

	Completed         bool   `json:"completed"`
	Evaluated         bool   `json:"evaluated"`
	HasEvaluation     bool   `json:"hasEvaluation"`
	Paid              bool   `json:"paid"`
	LockedByPaymentID string `json:"lockedByPaymentId"`
	PaymentID         string `json:"paymentId"`
}

// normalize folds the either-field payload into one AssignmentSummary.
func (raw *rawAssignment) normalize() (*domain.AssignmentSummary, error) {
	summary := &domain.AssignmentSummary{
		AssignmentID:      firstNonEmpty(raw.AssignmentID, raw.ID),
		EmployeeID:        raw.EmployeeID,
		EmployeeName:      firstNonEmpty(raw.EmployeeName, raw.EmployeeLabel),
		WorkActivityID:    firstNonEmpty(raw.WorkActivityID, raw.ActivityID),
		WorkActivityName:  firstNonEmpty(raw.ActivityName, raw.ActivityLabel),
		Completed:         raw.Completed,
		Evaluated:         raw.Evaluated || raw.HasEvaluation,
		Paid:              raw.Paid,
		LockedByPaymentID: firstNonEmpty(raw.LockedByPaymentID, raw.PaymentID),
	}
	if summary.AssignmentID == "" {
		return nil, fmt.Errorf("assignment payload has no identifier")
	}

	dateStr := firstNonEmpty(raw.AssignmentDate, raw.Date)
	if dateStr != "" {
		date, err := parseAssignmentDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("assignment %s has unparseable date %q: %w", summary.AssignmentID, dateStr, err)
		}
		summary.AssignmentDate = date
	}

	var err error
	if summary.Rate, err = pickDecimal(raw.Rate, raw.DailyRate); err != nil {
		return nil, fmt.Errorf("assignment %s rate: %w", summary.AssignmentID, err)
	}
	if summary.GrossAmount, err = pickDecimal(raw.GrossAmount, raw.Amount); err != nil {
		return nil, fmt.Errorf("assignment %s gross amount: %w", summary.AssignmentID, err)
	}
	if summary.CompletionPercentage, err = pickDecimal(raw.CompletionPercentage, raw.Completion); err != nil {
		return nil, fmt.Errorf("assignment %s completion: %w", summary.AssignmentID, err)
	}
	return summary, nil
}

// GetAssignment retrieves one assignment summary, normalized.
func (c *Client) GetAssignment(ctx context.Context, assignmentID string) (*domain.AssignmentSummary, error) {
	var raw rawAssignment
	endpoint := "/api/v1/assignments/" + url.PathEscape(assignmentID)
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}
	summary, err := raw.normalize()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrGatewayFailure, err)
	}
	return summary, nil
}

// ListEligibleAssignments retrieves completed, evaluated, unpaid, unlocked
// assignments dated within [startDate, endDate].
func (c *Client) ListEligibleAssignments(ctx context.Context, startDate, endDate time.Time) ([]domain.AssignmentSummary, error) {
	query := url.Values{}
	query.Set("eligible", "true")
	query.Set("startDate", startDate.Format(time.DateOnly))
	query.Set("endDate", endDate.Format(time.DateOnly))

	var raws []rawAssignment
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/assignments?"+query.Encode(), nil, &raws); err != nil {
		return nil, err
	}

	summaries := make([]domain.AssignmentSummary, 0, len(raws))
	for i := range raws {
		summary, err := raws[i].normalize()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", apperrors.ErrGatewayFailure, err)
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// Lock marks the assignment as held by the payment.
func (c *Client) Lock(ctx context.Context, assignmentID, paymentID string) error {
	endpoint := "/api/v1/assignments/" + url.PathEscape(assignmentID) + "/lock"
	body := map[string]string{"paymentId": paymentID}
	return c.doJSON(ctx, http.MethodPost, endpoint, body, nil)
}

// Unlock releases the assignment.
func (c *Client) Unlock(ctx context.Context, assignmentID string) error {
	endpoint := "/api/v1/assignments/" + url.PathEscape(assignmentID) + "/unlock"
	return c.doJSON(ctx, http.MethodPost, endpoint, nil, nil)
}

// doJSON performs one round-trip, mapping the gateway's status codes onto the
// application error taxonomy: 404 is NotFound, 409 is NotEligible (the lock is
// held elsewhere), anything else non-2xx is a gateway failure.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encoding request body: %v", apperrors.ErrGatewayFailure, err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("%w: building request: %v", apperrors.ErrGatewayFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", apperrors.ErrGatewayFailure, method, endpoint, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, endpoint, apperrors.ErrNotFound)
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("%s %s: %w", method, endpoint, apperrors.ErrNotEligible)
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %d: %s", apperrors.ErrGatewayFailure, method, endpoint, resp.StatusCode, string(detail))
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s %s response: %v", apperrors.ErrGatewayFailure, method, endpoint, err)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func parseAssignmentDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format")
}

func pickDecimal(candidates ...*json.Number) (decimal.Decimal, error) {
	for _, n := range candidates {
		if n == nil || n.String() == "" {
			continue
		}
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, fmt.Errorf("invalid number %q", n.String())
		}
		return d, nil
	}
	return decimal.Zero, nil
}
