// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cashflowuc

import (
	"errors"
	"math"

	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/shopspring/decimal"
)

// These errors describe degenerate inputs which would lead to a zero
// denominator or a non-finite result. They are wrapped by a
// cerr.InvalidInput error when returned by Compute.
var (
	ErrNonPositivePrice = errors.New("purchase price must be positive")
	ErrNonPositiveTerm  = errors.New("loan term must be positive")
	ErrNegativeLoan     = errors.New("down payment exceeds purchase price")
	ErrNoCashInvested   = errors.New(
		"down payment plus closing costs must be positive",
	)
	ErrNonFinite = errors.New("computation overflowed")
)

// MonthlyPayment returns the payment of a fully amortizing loan with
// the given principal, annual interest rate, and term in months.
// A zero rate degenerates to principal / months.
func MonthlyPayment(principal, annualRate float64, months int) float64 {
	if principal == 0 {
		return 0
	}
	n := float64(months)
	r := annualRate / 12
	if r == 0 {
		return principal / n
	}
	return principal * r / (1 - math.Pow(1+r, -n))
}

// Compute derives the investment metrics of the r request with full
// floating point precision. Rounding is left to the caller, so the
// results of Compute may be fed into further computations.
func Compute(r *model.CashFlowRequest) (*model.CashFlowResult, error) {
	switch {
	case !(r.PurchasePrice > 0):
		return nil, cerr.InvalidInput(ErrNonPositivePrice)
	case r.LoanTermMonths <= 0:
		return nil, cerr.InvalidInput(ErrNonPositiveTerm)
	}
	down := r.DownPaymentAmount()
	principal := r.PurchasePrice - down
	if principal < 0 {
		return nil, cerr.InvalidInput(ErrNegativeLoan)
	}
	invested := down + r.ClosingCosts
	if invested == 0 {
		return nil, cerr.InvalidInput(ErrNoCashInvested)
	}
	payment := MonthlyPayment(principal, r.InterestRate, r.LoanTermMonths)

	gross := r.MonthlyRent * float64(r.Units())
	vacancy := gross * r.VacancyRate
	effective := gross - vacancy
	mgmt := effective * r.ManagementFeeRate
	opex := vacancy + mgmt + r.MonthlyTaxes + r.MonthlyInsurance +
		r.MonthlyMaintenance + r.MonthlyExpenses

	noi := gross*12 - opex*12
	net := gross - payment - opex
	btcf := net * 12
	var tax float64
	if btcf > 0 {
		tax = btcf * r.IncomeTaxRate
	}
	res := &model.CashFlowResult{
		LoanPrincipal:            principal,
		MonthlyMortgagePayment:   payment,
		MonthlyNetCashFlow:       net,
		AnnualNetOperatingIncome: noi,
		CapRate:                  noi / r.PurchasePrice,
		CashOnCashReturn:         btcf / invested,
		AnnualDebtService:        payment * 12,
		AnnualBeforeTaxCashFlow:  btcf,
		AnnualIncomeTax:          tax,
		AnnualAfterTaxCashFlow:   btcf - tax,
		TotalCashInvested:        invested,
		MonthlyOperatingExpenses: opex,
		Breakdown: model.CashFlowBreakdown{
			GrossMonthlyRent:     gross,
			VacancyLoss:          vacancy,
			EffectiveMonthlyRent: effective,
			ManagementFee:        mgmt,
			Taxes:                r.MonthlyTaxes,
			Insurance:            r.MonthlyInsurance,
			Maintenance:          r.MonthlyMaintenance,
			OtherExpenses:        r.MonthlyExpenses,
			MonthlyNOI:           gross - opex,
		},
	}
	for _, v := range fieldsOf(res) {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			return nil, cerr.InvalidInput(ErrNonFinite)
		}
	}
	return res, nil
}

// Round returns a copy of res where monetary amounts are rounded to
// two decimal places and ratios to four. Halves are rounded away from
// zero on the shortest decimal form of each value, so 1.005 becomes
// 1.01 although its float64 form is slightly below 1.005.
func Round(res *model.CashFlowResult) *model.CashFlowResult {
	rr := *res
	for _, v := range fieldsOf(&rr) {
		*v = roundTo(*v, 2)
	}
	rr.CapRate = roundTo(res.CapRate, 4)
	rr.CashOnCashReturn = roundTo(res.CashOnCashReturn, 4)
	return &rr
}

func roundTo(v float64, places int32) float64 {
	d := decimal.NewFromFloat(v).Round(places)
	if d.IsZero() {
		return 0 // drop the negative zero sign
	}
	return d.InexactFloat64()
}

// fieldsOf returns pointers to all numeric fields of res, so they may
// be checked or rounded uniformly.
func fieldsOf(res *model.CashFlowResult) []*float64 {
	b := &res.Breakdown
	return []*float64{
		&res.LoanPrincipal, &res.MonthlyMortgagePayment,
		&res.MonthlyNetCashFlow, &res.AnnualNetOperatingIncome,
		&res.CapRate, &res.CashOnCashReturn, &res.AnnualDebtService,
		&res.AnnualBeforeTaxCashFlow, &res.AnnualIncomeTax,
		&res.AnnualAfterTaxCashFlow, &res.TotalCashInvested,
		&res.MonthlyOperatingExpenses,
		&b.GrossMonthlyRent, &b.VacancyLoss, &b.EffectiveMonthlyRent,
		&b.ManagementFee, &b.Taxes, &b.Insurance, &b.Maintenance,
		&b.OtherExpenses, &b.MonthlyNOI,
	}
}
