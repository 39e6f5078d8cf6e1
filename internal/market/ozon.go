package market

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"

	"github.com/popov-vn/ai-agent/internal/config"
	errs "github.com/popov-vn/ai-agent/internal/errors"
)

// PriceSelectors are the elements that carry prices on an Ozon search page.
var PriceSelectors = []string{
	`span[class*="price"]`,
	`div[class*="price"]`,
	`span[data-widget="webPrice"]`,
}

// OzonScraper reads the price spread from Ozon search results in a headless
// browser. Each lookup uses its own browser.
type OzonScraper struct {
	cfg config.MarketConfig
	log *slog.Logger
}

// NewOzonScraper creates a scraper. A zero timeout falls back to the default.
func NewOzonScraper(cfg config.MarketConfig, logger *slog.Logger) *OzonScraper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.PriceTimeout <= 0 {
		cfg.PriceTimeout = config.DefaultPriceTimeout
	}
	return &OzonScraper{cfg: cfg, log: logger.With("component", "ozon_scraper")}
}

// PriceRange opens the search page for product and returns the min and max
// of the prices shown. ErrNoPrices is wrapped when nothing parsable is found.
func (s *OzonScraper) PriceRange(ctx context.Context, product string) (PriceRange, error) {
	product = strings.TrimSpace(product)
	if product == "" {
		return PriceRange{}, errs.NewValidationError("product name is empty", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PriceTimeout)
	defer cancel()

	start := time.Now()
	texts, err := s.priceTexts(ctx, OzonSearchURL(product))
	if err != nil {
		return PriceRange{}, errs.NewAPIError("ozon price lookup failed", err)
	}

	r, err := NewPriceRange(product, texts)
	if err != nil {
		s.log.WarnContext(ctx, "No prices on search page", "product", product, "elements", len(texts))
		return PriceRange{}, err
	}

	s.log.InfoContext(ctx, "Price range found", "product", product, "min", r.Min, "max", r.Max, "samples", r.Samples, "duration", time.Since(start))
	return r, nil
}

func (s *OzonScraper) priceTexts(ctx context.Context, pageURL string) ([]string, error) {
	browser, cleanup, err := s.connect(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if s.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: s.cfg.UserAgent}); err != nil {
			return nil, fmt.Errorf("set user agent: %w", err)
		}
	}

	if err := page.Navigate(pageURL); err != nil {
		return nil, fmt.Errorf("navigate: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	// Lazy-loaded result tiles only render after a scroll.
	if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		s.log.DebugContext(ctx, "Scroll failed", "error", err)
	}
	if err := page.WaitDOMStable(time.Second, 0); err != nil {
		s.log.DebugContext(ctx, "Page did not settle", "error", err)
	}

	var texts []string
	for _, sel := range PriceSelectors {
		els, err := page.Elements(sel)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", sel, err)
		}
		for _, el := range els {
			text, err := el.Text()
			if err != nil {
				continue
			}
			texts = append(texts, text)
		}
	}

	return texts, nil
}

func (s *OzonScraper) connect(ctx context.Context) (*rod.Browser, func(), error) {
	controlURL := s.cfg.ControlURL
	var l *launcher.Launcher
	if controlURL == "" {
		l = launcher.New().
			Headless(s.cfg.Headless).
			Set(flags.Flag("disable-blink-features"), "AutomationControlled")
		if s.cfg.ChromeBin != "" {
			l = l.Bin(s.cfg.ChromeBin)
		}

		u, err := l.Context(ctx).Launch()
		if err != nil {
			return nil, nil, fmt.Errorf("launch chrome: %w", err)
		}
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Cleanup()
		}
		return nil, nil, fmt.Errorf("connect to chrome: %w", err)
	}

	return browser, func() {
		if l == nil {
			return
		}
		if err := browser.Close(); err != nil {
			s.log.Debug("Browser close failed", "error", err)
		}
		l.Cleanup()
	}, nil
}
