package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartchange/internal/domain"
	"smartchange/internal/metrics"
	"smartchange/internal/rates"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type rateSource interface {
	Current(ctx context.Context) domain.RateSnapshot
	Convert(ctx context.Context, amount string, from, to domain.Currency) (string, domain.RateSnapshot, error)
}

type convertInput struct {
	Amount string `json:"amount" jsonschema:"positive amount in the source currency"`
	From   string `json:"from" jsonschema:"source currency code, e.g. USD"`
	To     string `json:"to" jsonschema:"target currency code, e.g. BTC"`
}

type convertOutput struct {
	Result      string `json:"result"`
	Status      string `json:"status"`
	Fee         string `json:"fee,omitempty"`
	Approximate bool   `json:"approximate"`
	Advisory    string `json:"advisory,omitempty"`
}

type ratesInput struct {
	Base string `json:"base,omitempty" jsonschema:"fiat currency the board is priced in, default USD"`
}

type ratesOutput struct {
	Source    string             `json:"source"`
	Advisory  string             `json:"advisory,omitempty"`
	UpdatedAt string             `json:"updated_at"`
	Board     []rates.BoardEntry `json:"board"`
}

type toolset struct {
	rates rateSource
}

func registerTools(server *mcp.Server, src rateSource) {
	ts := &toolset{rates: src}
	mcp.AddTool(server, &mcp.Tool{
		Name:        "convert",
		Description: "Convert an amount between two supported fiat or crypto currencies.",
	}, ts.convert)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "rates",
		Description: "Show the current price board for the leading crypto assets.",
	}, ts.board)
}

func (t *toolset) convert(ctx context.Context, _ *mcp.CallToolRequest, in convertInput) (*mcp.CallToolResult, convertOutput, error) {
	from, ok := domain.ParseCurrency(in.From)
	if !ok {
		return nil, convertOutput{}, fmt.Errorf("unsupported currency %q", in.From)
	}
	to, ok := domain.ParseCurrency(in.To)
	if !ok {
		return nil, convertOutput{}, fmt.Errorf("unsupported currency %q", in.To)
	}

	value, snap, err := t.rates.Convert(ctx, in.Amount, from, to)
	out := convertOutput{
		Result:      rates.Display(value, err),
		Status:      metrics.ConversionStatus(err),
		Approximate: snap.Approximate(),
		Advisory:    snap.Advisory,
	}
	if err == nil {
		out.Fee = rates.ServiceFee(in.Amount)
	}

	text := fmt.Sprintf("%s %s = %s %s", strings.TrimSpace(in.Amount), from, out.Result, to)
	if out.Advisory != "" {
		text += "\n" + out.Advisory
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: text}}}, out, nil
}

func (t *toolset) board(ctx context.Context, _ *mcp.CallToolRequest, in ratesInput) (*mcp.CallToolResult, ratesOutput, error) {
	base := domain.USD
	if in.Base != "" {
		c, ok := domain.ParseCurrency(in.Base)
		if !ok || !c.IsFiat() {
			return nil, ratesOutput{}, fmt.Errorf("base must be a supported fiat currency, got %q", in.Base)
		}
		base = c
	}

	snap := t.rates.Current(ctx)
	board := rates.Board(snap.Rates, base)
	lines := make([]string, 0, len(board))
	for _, e := range board {
		lines = append(lines, e.String())
	}

	out := ratesOutput{
		Source:    string(snap.Source),
		Advisory:  snap.Advisory,
		UpdatedAt: snap.UpdatedAt.UTC().Format(time.RFC3339),
		Board:     board,
	}
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: strings.Join(lines, "\n")}}}, out, nil
}
