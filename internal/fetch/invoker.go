package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"reflect"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
)

// Doer is the subset of *http.Client an Invoker needs.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures an Invoker.
type Option func(*options)

type options struct {
	client Doer
	logger *slog.Logger
}

// WithHTTPClient sets the client used to perform the request.
// Defaults to http.DefaultClient.
func WithHTTPClient(client Doer) Option {
	return func(o *options) {
		if client != nil {
			o.client = client
		}
	}
}

// WithLogger sets the logger for request diagnostics. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// validate is shared across invokers; validator instances are safe for
// concurrent use and cache struct metadata.
var validate = validator.New()

// Invoker performs one HTTP GET against a URL and decodes the JSON body
// into T. An Invoker is single-use.
type Invoker[T any] struct {
	rawURL  string
	client  Doer
	logger  *slog.Logger
	invoked atomic.Bool

	// completion is assigned once by Invoke.
	completion func(Result[T])
}

// NewInvoker returns an Invoker for rawURL. The URL is not checked until
// Invoke is called.
func NewInvoker[T any](rawURL string, opts ...Option) *Invoker[T] {
	o := options{
		client: http.DefaultClient,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Invoker[T]{
		rawURL: rawURL,
		client: o.client,
		logger: o.logger,
	}
}

// URL returns the URL string the Invoker was built with.
func (i *Invoker[T]) URL() string {
	return i.rawURL
}

// Invoke starts the request and arranges for onComplete to be called exactly
// once with its Result. If the URL is invalid, onComplete runs before Invoke
// returns and no request is made; otherwise it runs on another goroutine.
//
// Invoke returns ErrNilCallback or ErrAlreadyInvoked for misuse, in which
// case onComplete is never called.
func (i *Invoker[T]) Invoke(onComplete func(Result[T])) error {
	if onComplete == nil {
		return ErrNilCallback
	}
	if !i.invoked.CompareAndSwap(false, true) {
		return ErrAlreadyInvoked
	}
	i.completion = onComplete

	u, err := parseURL(i.rawURL)
	if err != nil {
		i.logger.Debug("rejected invalid url", "url", i.rawURL, "error", err)
		i.completion(Failure[T](&Error{Kind: ErrURLCreationFailure, URL: i.rawURL, Err: err}))
		return nil
	}

	// Requests use a background context. Nothing aborts a fetch once started.
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, u.String(), nil)
	if err != nil {
		i.completion(Failure[T](&Error{Kind: ErrURLRequestCreationFailure, URL: i.rawURL, Err: err}))
		return nil
	}

	go i.do(req)
	return nil
}

func (i *Invoker[T]) do(req *http.Request) {
	i.logger.Debug("fetch started", "url", i.rawURL)

	resp, err := i.client.Do(req)
	result := decodeResponse[T](i.rawURL, resp, err)

	if result.IsSuccess() {
		i.logger.Debug("fetch completed", "url", i.rawURL, "status_code", resp.StatusCode)
	} else {
		i.logger.Debug("fetch failed",
			"url", i.rawURL,
			"error_kind", result.Kind().String(),
			"error", result.Err())
	}

	i.completion(result)
}

// decodeResponse maps the outcome of a GET to a Result. It closes resp.Body.
func decodeResponse[T any](rawURL string, resp *http.Response, err error) Result[T] {
	if err != nil {
		return Failure[T](&Error{Kind: ErrEmptyURL, URL: rawURL, Err: err})
	}
	if resp == nil {
		return Failure[T](&Error{Kind: ErrEmptyURL, URL: rawURL, Err: fmt.Errorf("no response")})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return Failure[T](&Error{Kind: ErrEmptyURL, URL: rawURL, StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Failure[T](&Error{
			Kind:       ErrEmptyData,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to read response body: %w", err),
		})
	}
	if len(body) == 0 {
		return Failure[T](&Error{Kind: ErrEmptyData, URL: rawURL, StatusCode: resp.StatusCode})
	}

	var value T
	if err := json.Unmarshal(body, &value); err != nil {
		return Failure[T](&Error{Kind: ErrErrorParsingJSON, URL: rawURL, StatusCode: resp.StatusCode, Err: err})
	}
	if err := checkShape(body, reflect.TypeFor[T]()); err != nil {
		return Failure[T](&Error{Kind: ErrErrorParsingJSON, URL: rawURL, StatusCode: resp.StatusCode, Err: err})
	}
	if err := validateDecoded(value); err != nil {
		return Failure[T](&Error{Kind: ErrErrorParsingJSON, URL: rawURL, StatusCode: resp.StatusCode, Err: err})
	}

	return Success(value)
}

// parseURL accepts absolute URLs with a scheme and a host.
func parseURL(raw string) (*url.URL, error) {
	if err := validate.Var(raw, "required,url"); err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", raw, err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	return u, nil
}

var (
	errNullBody      = errors.New("null body for non-nullable type")
	errMissingFields = errors.New("missing required fields")

	unmarshalerType = reflect.TypeFor[json.Unmarshaler]()
)

// checkShape rejects bodies that json.Unmarshal accepts but that do not
// describe a value of t: a literal null for a non-nullable t, and objects
// lacking keys for required struct fields. A struct field is required unless
// it is a pointer or its json tag carries omitempty or omitzero.
func checkShape(body []byte, t reflect.Type) error {
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		if t.Kind() == reflect.Pointer || t.Kind() == reflect.Interface {
			return nil
		}
		return fmt.Errorf("%w %s", errNullBody, t)
	}

	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct || reflect.PointerTo(t).Implements(unmarshalerType) {
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return err
	}
	keys := make(map[string]struct{}, len(obj))
	for k := range obj {
		keys[strings.ToLower(k)] = struct{}{}
	}

	if missing := missingFields(t, keys); len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%w: %s", errMissingFields, strings.Join(missing, ", "))
	}
	return nil
}

// missingFields returns the JSON names of t's required fields absent from
// keys. Keys are lower-cased, matching encoding/json's case-insensitive
// field lookup.
func missingFields(t reflect.Type, keys map[string]struct{}) []string {
	var missing []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" && opts == "" {
			continue
		}

		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				missing = append(missing, missingFields(ft, keys)...)
				continue
			}
		}
		if !f.IsExported() || f.Type.Kind() == reflect.Pointer {
			continue
		}
		if hasTagOption(opts, "omitempty") || hasTagOption(opts, "omitzero") {
			continue
		}

		if name == "" {
			name = f.Name
		}
		if _, ok := keys[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func hasTagOption(opts, option string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == option {
			return true
		}
	}
	return false
}

// validateDecoded applies `validate` struct tags on T, so a struct can mark
// fields as required the way a strict decoder would.
func validateDecoded(value any) error {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(v.Interface())
}
