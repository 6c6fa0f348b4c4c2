package catalogapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"hospital-scheduling/config"
	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/pkg/apperror"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const maxResponseBytes = 4 << 20

// Client reads the catalog from a remote REST backend
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	maxRetries uint64
	log        *logrus.Logger

	// newBackOff is replaceable so tests don't sleep
	newBackOff func() backoff.BackOff
}

type response struct {
	status int
	body   []byte
}

// errServer marks a 5xx so it is retried and counted by the breaker
var errServer = errors.New("catalog server error")

// NewClient creates a new catalog API client
func NewClient(cfg config.CatalogConfig, log *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		token:   cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "catalog-api",
			Timeout: cfg.BreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warnf("Circuit breaker %s changed from %s to %s", name, from, to)
			},
		}),
		maxRetries: cfg.MaxRetries,
		log:        log,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
}

func (c *Client) ListSpecialties(ctx context.Context) ([]entity.Specialty, error) {
	resp, err := c.get(ctx, "/specialties")
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, unexpectedStatus("list specialties", resp)
	}

	items, err := decodeList(resp.body)
	if err != nil {
		return nil, apperror.Upstream("catalog returned an unreadable specialty list", err)
	}

	specialties := make([]entity.Specialty, 0, len(items))
	for _, item := range items {
		specialty, err := normalizeSpecialty(item)
		if err != nil {
			return nil, apperror.Upstream("catalog returned an invalid specialty", err)
		}
		specialties = append(specialties, specialty)
	}
	return specialties, nil
}

func (c *Client) ListDoctorsBySpecialty(ctx context.Context, specialtyID int64) ([]entity.Doctor, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/specialties/%d/doctors", specialtyID))
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return []entity.Doctor{}, nil
	}
	if resp.status != http.StatusOK {
		return nil, unexpectedStatus("list doctors", resp)
	}

	items, err := decodeList(resp.body)
	if err != nil {
		return nil, apperror.Upstream("catalog returned an unreadable doctor list", err)
	}

	doctors := make([]entity.Doctor, 0, len(items))
	for _, item := range items {
		doctor, err := normalizeDoctor(item)
		if err != nil {
			return nil, apperror.Upstream("catalog returned an invalid doctor", err)
		}
		if doctor.SpecialtyID == 0 {
			doctor.SpecialtyID = specialtyID
		}
		if doctor.IsActive {
			doctors = append(doctors, doctor)
		}
	}
	return doctors, nil
}

func (c *Client) GetDoctor(ctx context.Context, doctorID int64) (*entity.Doctor, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/doctors/%d", doctorID))
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return nil, nil
	}
	if resp.status != http.StatusOK {
		return nil, unexpectedStatus("get doctor", resp)
	}

	obj, err := decodeObject(resp.body)
	if err != nil {
		return nil, apperror.Upstream("catalog returned an unreadable doctor", err)
	}
	doctor, err := normalizeDoctor(mustMarshal(obj))
	if err != nil {
		return nil, apperror.Upstream("catalog returned an invalid doctor", err)
	}
	return &doctor, nil
}

func (c *Client) GetDoctorAvailabilityTemplate(ctx context.Context, doctorID int64) (entity.AvailabilityTemplate, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/doctors/%d/availability-template", doctorID))
	if err != nil {
		return nil, err
	}
	// An unknown doctor has no working hours.
	if resp.status == http.StatusNotFound {
		return entity.AvailabilityTemplate{}, nil
	}
	if resp.status != http.StatusOK {
		return nil, unexpectedStatus("get availability template", resp)
	}

	template, err := normalizeTemplate(resp.body)
	if err != nil {
		return nil, apperror.Upstream("catalog returned an unreadable availability template", err)
	}
	return template, nil
}

// get performs an idempotent GET through the breaker with retries on network
// errors and 5xx responses. 4xx responses are returned to the caller as-is.
func (c *Client) get(ctx context.Context, path string) (*response, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var resp *response
		operation := func() error {
			r, err := c.do(ctx, path)
			if err != nil {
				return err
			}
			resp = r
			return nil
		}

		notify := func(err error, next time.Duration) {
			c.log.Warnf("Catalog request %s failed, retrying in %s: %+v", path, next, err)
		}

		b := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), c.maxRetries), ctx)
		if err := backoff.RetryNotify(operation, b, notify); err != nil {
			return nil, err
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, apperror.Upstream("catalog service is temporarily unavailable", err)
		}
		c.log.Warnf("Failed to call catalog %s: %+v", path, err)
		return nil, apperror.Upstream("catalog service unavailable", err)
	}
	return result.(*response), nil
}

func (c *Client) do(ctx context.Context, path string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.bearerToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: %s returned %d", errServer, path, resp.StatusCode)
	}

	return &response{status: resp.StatusCode, body: body}, nil
}

// bearerToken forwards the caller's token, falling back to the service token.
func (c *Client) bearerToken(ctx context.Context) string {
	if token := entity.ActorFromContext(ctx).Token; token != "" {
		return token
	}
	return c.token
}

func unexpectedStatus(op string, resp *response) error {
	return apperror.Upstream(fmt.Sprintf("catalog %s failed with status %d", op, resp.status), nil)
}
