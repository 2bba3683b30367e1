// Command quotepdf composes quote documents offline from JSON files.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/diewo77/prevengo/internal/assets"
	"github.com/diewo77/prevengo/internal/observability"
	"github.com/diewo77/prevengo/internal/pdf"
	"github.com/diewo77/prevengo/internal/services"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "quotepdf:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "quotepdf",
		Usage: "render PrevenGo quotes to PDF without the server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"LOG_LEVEL"}},
		},
		Commands: []*cli.Command{
			{
				Name:  "render",
				Usage: "compose a quote JSON file into a PDF",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "quote", Aliases: []string{"q"}, Usage: "quote JSON file", Required: true},
					&cli.StringFlag{Name: "issuer", Aliases: []string{"i"}, Usage: "issuer JSON file"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default preventivo-<id>.pdf)"},
					&cli.StringFlag{Name: "lang", Value: "it", EnvVars: []string{"LANG_DEFAULT"}},
					&cli.DurationFlag{Name: "logo-timeout", Value: assets.DefaultTimeout},
				},
				Action: render,
			},
			{
				Name:  "sample",
				Usage: "write an example quote JSON file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "sample.json"},
				},
				Action: sample,
			},
		},
	}
}

func render(c *cli.Context) error {
	logger, err := observability.NewLogger(c.String("log-level"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var q pdf.Quote
	if err := readJSON(c.String("quote"), &q); err != nil {
		return fmt.Errorf("read quote: %w", err)
	}
	var iss pdf.Issuer
	if path := c.String("issuer"); path != "" {
		if err := readJSON(path, &iss); err != nil {
			return fmt.Errorf("read issuer: %w", err)
		}
	}
	fillTotals(&q)

	composer := pdf.NewComposer(
		pdf.WithLogoSource(assets.NewLoader(
			assets.WithHTTPClient(&http.Client{Timeout: c.Duration("logo-timeout")}),
			assets.WithBaseDir(filepath.Dir(c.String("quote"))),
			assets.WithLogger(logger),
		)),
		pdf.WithLogger(logger),
		pdf.WithLabels(pdf.LabelsFor(c.String("lang"))),
	)
	res, err := composer.Compose(context.Background(), q, iss, pdf.Options{})
	if err != nil {
		return err
	}

	out := c.String("out")
	if out == "" {
		out = pdf.DocumentName(q.ID)
	}
	if err := os.WriteFile(out, res.Bytes, 0o644); err != nil {
		return err
	}
	logger.Info("quote rendered", zap.String("out", out), zap.Int("pages", res.Pages))
	fmt.Fprintf(c.App.Writer, "%s (%d pages)\n", out, res.Pages)
	return nil
}

// fillTotals computes the amounts of a quote file that carries none.
func fillTotals(q *pdf.Quote) {
	if q.Subtotal != 0 || q.Total != 0 {
		return
	}
	items := make([]services.ItemInput, 0, len(q.Items))
	for _, it := range q.Items {
		items = append(items, services.ItemInput{Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	t := services.ComputeTotals(items, q.Discount, q.DiscountPercentage, q.TaxRate)
	q.Subtotal, q.Discount, q.Tax, q.Total = t.Subtotal, t.Discount, t.Tax, t.Total
}

func readJSON(path string, dst any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	dec := json.NewDecoder(io.LimitReader(f, 10<<20))
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

func sample(c *cli.Context) error {
	rate := pdf.DefaultTaxRate
	q := pdf.Quote{
		ID:        "01HZX3S8Q5C9N2J7W4K6T0B1EM",
		Number:    "PRV-" + time.Now().Format("2006") + "-0001",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Customer: pdf.Customer{
			Name:    "Mario Rossi",
			Company: "Rossi Costruzioni Srl",
			Email:   "mario.rossi@example.com",
			Phone:   "+39 02 1234567",
		},
		Subject: "Ristrutturazione bagno",
		Items: []pdf.Item{
			{Description: "Demolizione rivestimenti esistenti e smaltimento macerie", Quantity: 1, UnitPrice: 450, Unit: "corpo"},
			{Description: "Fornitura e posa piastrelle gres porcellanato 60x60", Quantity: 18.5, UnitPrice: 42, Unit: "m²"},
			{Description: "Sostituzione sanitari sospesi", Quantity: 2, UnitPrice: 320, Unit: "pz"},
		},
		TaxRate:      &rate,
		Notes:        "I lavori inizieranno entro 15 giorni dall'accettazione.",
		PaymentTerms: "30% all'ordine, saldo a fine lavori.",
	}
	fillTotals(&q)

	raw, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return err
	}
	out := c.String("out")
	if err := os.WriteFile(out, append(raw, '\n'), 0o644); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, out)
	return nil
}
