package clientutils

import (
	"net/http"

	"geepr/internal/configutils"
	"geepr/internal/domain"
	"geepr/internal/domain/pullrequest"
	"geepr/internal/persistance"
	"geepr/internal/pkg/eventbus"
	"geepr/internal/pkg/gitee"
	"geepr/internal/pkg/lazy"
	"geepr/internal/pkg/metrics"
	"geepr/internal/pkg/pagination"

	"github.com/rs/zerolog"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type ClientFactory struct {
	// HTTPClient replaces the default transport when set.
	HTTPClient *http.Client
}

// NewClient builds a Gitee client for repo from the configuration in v.
func (cf ClientFactory) NewClient(v *viper.Viper, repo domain.GitRepository) (*gitee.Client, error) {
	token := v.GetString(configutils.KeyToken)
	if token == "" {
		return nil, gitee.ErrMissingToken
	}

	return gitee.New(&gitee.ClientOptions{
		Repository: repo,
		Token:      token,
		URL:        v.GetString(configutils.KeyURL),
		GraphQLURL: v.GetString(configutils.KeyGraphQLURL),
		PerPage:    v.GetInt(configutils.KeyPerPage),
		RateLimit:  v.GetFloat64(configutils.KeyRateLimit),
		Logger:     NewTransportLogger(zerolog.GlobalLevel()),
		HTTPClient: cf.HTTPClient,
	})
}

// NewTransportLogger returns the logrus logger handed to resty, at the
// level matching the global zerolog level.
func NewTransportLogger(level zerolog.Level) *logrus.Logger {
	l := logrus.New()
	switch {
	case level <= zerolog.TraceLevel:
		l.SetLevel(logrus.TraceLevel)
	case level <= zerolog.DebugLevel:
		l.SetLevel(logrus.DebugLevel)
	case level <= zerolog.InfoLevel:
		l.SetLevel(logrus.InfoLevel)
	default:
		l.SetLevel(logrus.WarnLevel)
	}

	return l
}

// Session bundles everything a command needs to talk about the pull
// requests of one repository.
type Session struct {
	Repository domain.GitRepository
	Client     *gitee.Client
	Viewed     pullrequest.ViewedStore
	Bus        *eventbus.EventBus
	Metrics    *metrics.PrometheusCollector
	Providers  *pullrequest.ProviderRepository
}

func (cf ClientFactory) NewSession(v *viper.Viper, repo domain.GitRepository, run lazy.Runner) (*Session, error) {
	c, err := cf.NewClient(v, repo)
	if err != nil {
		return nil, err
	}

	store, err := persistance.New(v.GetString(configutils.KeyViewedPath))
	if err != nil {
		return nil, err
	}

	s := &Session{
		Repository: repo,
		Client:     c,
		Viewed:     store.ForRepository(repo.FullName()),
		Bus:        eventbus.NewEventBus(),
		Metrics:    metrics.NewPrometheus(),
	}
	s.Providers = pullrequest.NewProviderRepository(
		c,
		s.Viewed,
		pullrequest.WithRunner(run),
		pullrequest.WithEventBus(s.Bus),
		pullrequest.WithMetrics(s.Metrics),
	)

	return s, nil
}

func (s *Session) ListModel(o *pullrequest.ListOptions) *pullrequest.ListModel {
	return pullrequest.NewListModel(s.Client, o, pagination.WithMetrics(s.Metrics))
}

// Close disposes every provider still held.
func (s *Session) Close() {
	s.Providers.Dispose()
}
