// Package rest is the HTTP API of the account service: a chi router,
// middleware, JSON handlers and Prometheus metrics.
package rest

import (
	"context"
	"reflect"
	"strings"

	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
	"github.com/go-playground/validator/v10"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	// LegacyEnvelopeStatus answers failed /auth calls with HTTP 200 and
	// success=false instead of a 4xx status.
	LegacyEnvelopeStatus bool
	ServiceName          string
}

type Handler struct {
	accounts *services.AccountService
	auth     *services.AuthService
	store    Pinger
	log      logging.Logger
	metrics  *Metrics
	validate *validator.Validate
	opts     Options
}

func NewHandler(accounts *services.AccountService, auth *services.AuthService, store Pinger, metrics *Metrics, log logging.Logger, opts Options) *Handler {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	if opts.ServiceName == "" {
		opts.ServiceName = "Account Service"
	}
	return &Handler{
		accounts: accounts,
		auth:     auth,
		store:    store,
		log:      log.With("module", "http"),
		metrics:  metrics,
		validate: v,
		opts:     opts,
	}
}
