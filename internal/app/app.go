package app

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/jsvanda/infoboard/external/calfeed"
	"github.com/jsvanda/infoboard/external/flashdata"
	"github.com/jsvanda/infoboard/external/opendata"
	"github.com/jsvanda/infoboard/external/tvportal"
	"github.com/jsvanda/infoboard/internal/abuse"
	"github.com/jsvanda/infoboard/internal/config"
	"github.com/jsvanda/infoboard/internal/interfaces/httpapi"
	"github.com/jsvanda/infoboard/internal/platform/cache"
	"github.com/jsvanda/infoboard/internal/platform/fetch"
	"github.com/jsvanda/infoboard/internal/platform/logging"
	"github.com/jsvanda/infoboard/internal/usecase"
)

func NewHTTPServer(cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	zlog := logging.Default()

	// Each upstream gets its own fetcher so breaker state never crosses
	// providers: a dead feed must not open the circuit for the TV portal.
	flashClient := flashdata.NewClient(flashdata.ClientConfig{
		BaseURL: cfg.FlashdataBaseURL,
		Fetcher: fetch.NewClient(fetch.ClientConfig{
			UserAgent: cfg.FetchUserAgent,
			Retry:     fetch.CriticalProfile(),
			Breaker:   cfg.FetchBreaker,
			Logger:    zlog,
		}),
		Logger: zlog,
	})
	portalClient := tvportal.NewClient(tvportal.ClientConfig{
		ScheduleURL: cfg.TVPortalURL,
		Fetcher: fetch.NewClient(fetch.ClientConfig{
			UserAgent: cfg.FetchUserAgent,
			Retry:     fetch.ScraperProfile(),
			Breaker:   cfg.FetchBreaker,
			Logger:    zlog,
		}),
		Logger: zlog,
	})
	datasetClient := opendata.NewClient(opendata.ClientConfig{
		BaseURL: cfg.OpendataBaseURL,
		APIKey:  cfg.OpendataAPIKey,
		Fetcher: fetch.NewClient(fetch.ClientConfig{
			UserAgent: cfg.FetchUserAgent,
			Retry:     fetch.StableProfile(),
			Breaker:   cfg.FetchBreaker,
			Logger:    zlog,
		}),
		Logger: zlog,
	})
	feedClient := calfeed.NewClient(calfeed.ClientConfig{
		Fetcher: fetch.NewClient(fetch.ClientConfig{
			UserAgent: cfg.FetchUserAgent,
			Retry:     fetch.StableProfile(),
			Breaker:   cfg.FetchBreaker,
			Logger:    zlog,
		}),
		Logger: zlog,
	})

	resultsSvc := usecase.NewResultsService(flashClient,
		cache.NewStore(cfg.MatchResultsTTL), cache.NewStore(cfg.MatchResultsTTL), zlog)
	tvguideSvc := usecase.NewTVGuideService(portalClient, cache.NewStore(cfg.TVScheduleTTL), zlog)
	calendarSvc := usecase.NewCalendarService(feedClient, cache.NewStore(cfg.CalendarTTL), zlog)
	placeSvc := usecase.NewPlaceService(datasetClient, cache.NewStore(cfg.PlacesTTL), zlog)
	refreshSvc := usecase.NewRefreshService(resultsSvc, tvguideSvc, calendarSvc, placeSvc, zlog)

	var rdb redis.Cmdable
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}

	notifier := abuse.NewNotifier(abuse.SMTPConfig{
		Addr:     smtpAddr(cfg.SMTPHost, cfg.SMTPPort),
		From:     cfg.SMTPFrom,
		To:       cfg.AlertRecipients,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})
	alerter := abuse.NewAlerter(abuse.AlerterConfig{
		Redis:          rdb,
		Notifier:       notifier,
		SuppressWindow: cfg.AlertSuppressWindow,
		Logger:         zlog,
	})
	tracker := abuse.NewTracker(abuse.TrackerConfig{
		Redis:      rdb,
		Mode:       cfg.AbuseMode,
		Thresholds: cfg.AbuseThresholds,
		Alerter:    alerter,
		Logger:     zlog,
	})

	handler := httpapi.NewHandler(resultsSvc, tvguideSvc, calendarSvc, placeSvc, refreshSvc, logger)
	router := httpapi.NewRouter(handler, tracker, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func smtpAddr(host string, port int) string {
	if host == "" {
		return ""
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
