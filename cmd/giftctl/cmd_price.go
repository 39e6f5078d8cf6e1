package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/popov-vn/ai-agent/internal/config"
	"github.com/popov-vn/ai-agent/internal/gift"
	"github.com/popov-vn/ai-agent/internal/market"
)

var (
	priceControlURL  string
	priceChromeBin   string
	priceShowBrowser bool
)

// priceCmd scrapes the Ozon search page of a product
var priceCmd = &cobra.Command{
	Use:   "price <product...>",
	Short: "Look up the Ozon price range of a product",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPrice,
}

func init() {
	priceCmd.Flags().StringVar(&priceControlURL, "control-url", "", "DevTools URL of a running Chrome (default: launch one)")
	priceCmd.Flags().StringVar(&priceChromeBin, "chrome-bin", "", "Chrome binary to launch")
	priceCmd.Flags().BoolVar(&priceShowBrowser, "show-browser", false, "Run the launched browser with a window")
}

func runPrice(cmd *cobra.Command, args []string) error {
	product := strings.Join(args, " ")

	ctx, cancel := commandContext(cmd)
	defer cancel()

	scraper := market.NewOzonScraper(config.MarketConfig{
		ControlURL:   priceControlURL,
		ChromeBin:    priceChromeBin,
		Headless:     !priceShowBrowser,
		UserAgent:    config.DefaultUserAgent,
		PriceTimeout: config.DefaultPriceTimeout,
	}, cliLogger())

	r, err := scraper.PriceRange(ctx, product)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, r.String())
	for _, link := range market.Links(gift.Record{Name: r.Product}) {
		fmt.Fprintf(out, "%s: %s\n", link.Marketplace, link.URL)
	}
	return nil
}
