// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package validation

import (
	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/model"
)

type cashFlow struct {
	PurchasePrice      *float64 `json:"purchasePrice" validate:"required,gt=0"`
	DownPayment        *float64 `json:"downPayment" validate:"required_without=DownPaymentPercent,omitnil,gte=0"`
	DownPaymentPercent *float64 `json:"downPaymentPercent" validate:"excluded_with=DownPayment,omitnil,gte=0,lte=1"`
	ClosingCosts       *float64 `json:"closingCosts" validate:"omitnil,gte=0"`
	InterestRate       *float64 `json:"interestRate" validate:"required,gte=0,lte=1"`
	LoanTermMonths     *int     `json:"loanTermMonths" validate:"required,gt=0,lte=600"`
	MonthlyRent        *float64 `json:"monthlyRent" validate:"required,gte=0"`
	UnitCount          *int     `json:"unitCount" validate:"omitnil,gte=1,lte=1000"`
	VacancyRate        *float64 `json:"vacancyRate" validate:"omitnil,gte=0,lte=1"`
	ManagementFeeRate  *float64 `json:"managementFeeRate" validate:"omitnil,gte=0,lte=1"`
	MonthlyTaxes       *float64 `json:"monthlyTaxes" validate:"omitnil,gte=0"`
	MonthlyInsurance   *float64 `json:"monthlyInsurance" validate:"omitnil,gte=0"`
	MonthlyMaintenance *float64 `json:"monthlyMaintenance" validate:"omitnil,gte=0"`
	MonthlyExpenses    *float64 `json:"monthlyExpenses" validate:"omitnil,gte=0"`
	IncomeTaxRate      *float64 `json:"incomeTaxRate" validate:"omitnil,gte=0,lte=1"`
}

// CashFlow validates the raw fields of a cash-flow calculation request.
// The down payment must be given either as an amount (downPayment) in
// [0, purchasePrice] or as a fraction of the purchase price
// (downPaymentPercent) in [0, 1], but not both. Rates are fractions.
func CashFlow(raw map[string]any) (*model.CashFlowRequest, error) {
	r := newReader(raw)
	cf := &cashFlow{
		PurchasePrice:      r.float("purchasePrice"),
		DownPayment:        r.float("downPayment"),
		DownPaymentPercent: r.float("downPaymentPercent"),
		ClosingCosts:       r.float("closingCosts"),
		InterestRate:       r.float("interestRate"),
		LoanTermMonths:     r.integer("loanTermMonths"),
		MonthlyRent:        r.float("monthlyRent"),
		UnitCount:          r.integer("unitCount"),
		VacancyRate:        r.float("vacancyRate"),
		ManagementFeeRate:  r.float("managementFeeRate"),
		MonthlyTaxes:       r.float("monthlyTaxes"),
		MonthlyInsurance:   r.float("monthlyInsurance"),
		MonthlyMaintenance: r.float("monthlyMaintenance"),
		MonthlyExpenses:    r.float("monthlyExpenses"),
		IncomeTaxRate:      r.float("incomeTaxRate"),
	}
	if cf.DownPayment != nil && cf.PurchasePrice != nil &&
		*cf.DownPayment > *cf.PurchasePrice {
		r.fail("downPayment", cerr.ReasonOutOfRange)
	}
	if err := check(r, cf); err != nil {
		return nil, err
	}
	return &model.CashFlowRequest{
		PurchasePrice:      *cf.PurchasePrice,
		DownPayment:        cf.DownPayment,
		DownPaymentPercent: cf.DownPaymentPercent,
		ClosingCosts:       zero(cf.ClosingCosts),
		InterestRate:       *cf.InterestRate,
		LoanTermMonths:     *cf.LoanTermMonths,
		MonthlyRent:        *cf.MonthlyRent,
		UnitCount:          zero(cf.UnitCount),
		VacancyRate:        zero(cf.VacancyRate),
		ManagementFeeRate:  zero(cf.ManagementFeeRate),
		MonthlyTaxes:       zero(cf.MonthlyTaxes),
		MonthlyInsurance:   zero(cf.MonthlyInsurance),
		MonthlyMaintenance: zero(cf.MonthlyMaintenance),
		MonthlyExpenses:    zero(cf.MonthlyExpenses),
		IncomeTaxRate:      zero(cf.IncomeTaxRate),
	}, nil
}

func zero[T any](v *T) T {
	if v == nil {
		var z T
		return z
	}
	return *v
}
