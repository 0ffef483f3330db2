// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package model

// CashFlowRequest holds the financial inputs of a rental investment.
// It is transient and never persisted. Rates are fractions (0.06 means
// six percent) and all monetary amounts share one currency.
//
// The down payment is given either as an amount (DownPayment) or as
// a fraction of the purchase price (DownPaymentPercent); the validation
// layer accepts exactly one of them and DownPaymentAmount resolves it.
type CashFlowRequest struct {
	PurchasePrice      float64
	DownPayment        *float64
	DownPaymentPercent *float64
	ClosingCosts       float64

	InterestRate   float64 // annual rate
	LoanTermMonths int

	MonthlyRent float64 // per unit
	UnitCount   int     // zero is treated as one unit

	VacancyRate       float64 // fraction of the gross rent
	ManagementFeeRate float64 // fraction of the effective rent

	MonthlyTaxes       float64
	MonthlyInsurance   float64
	MonthlyMaintenance float64
	MonthlyExpenses    float64 // other operating expenses

	IncomeTaxRate float64 // applied on positive before-tax cash flow
}

// DownPaymentAmount returns the down payment as an amount, converting
// DownPaymentPercent when DownPayment is not given.
func (r *CashFlowRequest) DownPaymentAmount() float64 {
	switch {
	case r.DownPayment != nil:
		return *r.DownPayment
	case r.DownPaymentPercent != nil:
		return r.PurchasePrice * *r.DownPaymentPercent
	default:
		return 0
	}
}

// Units returns the number of rented units, defaulting to one.
func (r *CashFlowRequest) Units() int {
	if r.UnitCount <= 0 {
		return 1
	}
	return r.UnitCount
}

// CashFlowResult contains the derived investment metrics. Monetary
// amounts are rounded to two decimal places and ratios to four.
type CashFlowResult struct {
	LoanPrincipal            float64 `json:"loanPrincipal"`
	MonthlyMortgagePayment   float64 `json:"monthlyMortgagePayment"`
	MonthlyNetCashFlow       float64 `json:"monthlyNetCashFlow"`
	AnnualNetOperatingIncome float64 `json:"annualNetOperatingIncome"`
	CapRate                  float64 `json:"capRate"`
	CashOnCashReturn         float64 `json:"cashOnCashReturn"`

	AnnualDebtService        float64 `json:"annualDebtService"`
	AnnualBeforeTaxCashFlow  float64 `json:"annualBeforeTaxCashFlow"`
	AnnualIncomeTax          float64 `json:"annualIncomeTax"`
	AnnualAfterTaxCashFlow   float64 `json:"annualAfterTaxCashFlow"`
	TotalCashInvested        float64 `json:"totalCashInvested"`
	MonthlyOperatingExpenses float64 `json:"monthlyOperatingExpenses"`

	Breakdown CashFlowBreakdown `json:"breakdown"`
}

// CashFlowBreakdown itemizes the monthly income and expenses which
// lead to the net operating income.
type CashFlowBreakdown struct {
	GrossMonthlyRent     float64 `json:"grossMonthlyRent"`
	VacancyLoss          float64 `json:"vacancyLoss"`
	EffectiveMonthlyRent float64 `json:"effectiveMonthlyRent"`
	ManagementFee        float64 `json:"managementFee"`
	Taxes                float64 `json:"taxes"`
	Insurance            float64 `json:"insurance"`
	Maintenance          float64 `json:"maintenance"`
	OtherExpenses        float64 `json:"otherExpenses"`
	MonthlyNOI           float64 `json:"monthlyNetOperatingIncome"`
}
