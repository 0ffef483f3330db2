// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package cashflowuc contains the cash-flow calculator UseCase which
// computes the investment metrics of a rental property. The calculator
// is pure, so it needs no repository and no database connection.
//
// The monthly mortgage payment follows the standard amortization
// formula:
//
//	P = L * r / (1 - (1 + r)^-n)
//
// where L is the loan principal (purchase price minus down payment),
// r is the monthly rate (annual rate / 12), and n is the loan term in
// months. For r == 0, the payment is L / n.
package cashflowuc

import (
	"context"
	"log/slog"

	"github.com/momeni/realty/pkg/core/log"
	"github.com/momeni/realty/pkg/core/model"
)

// UseCase represents a cash-flow calculator use case.
type UseCase struct{}

// New instantiates a cash-flow use case.
func New() *UseCase {
	return &UseCase{}
}

// Calculate computes the rounded investment metrics of the req request.
// Inputs are expected to be validated for their ranges beforehand,
// while degenerate combinations (e.g., a zero cash investment) are
// reported as a cerr.InvalidInput error.
func (cf *UseCase) Calculate(
	ctx context.Context, req *model.CashFlowRequest,
) (*model.CashFlowResult, error) {
	res, err := Compute(req)
	if err != nil {
		log.Info(ctx, "rejecting cash-flow request", log.Err("err", err))
		return nil, err
	}
	res = Round(res)
	log.Info(ctx, "cash-flow calculated",
		slog.Float64("purchasePrice", req.PurchasePrice),
		slog.Float64("monthlyNetCashFlow", res.MonthlyNetCashFlow),
	)
	return res, nil
}
