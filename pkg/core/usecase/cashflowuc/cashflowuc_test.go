// Copyright (c) 2024 Behnam Momeni
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package cashflowuc_test

import (
	"context"
	"math"
	"testing"

	"github.com/momeni/realty/pkg/core/cerr"
	"github.com/momeni/realty/pkg/core/model"
	"github.com/momeni/realty/pkg/core/usecase/cashflowuc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatAddr(f float64) *float64 {
	return &f
}

func TestCalculateConventionalLoan(t *testing.T) {
	uc := cashflowuc.New()
	res, err := uc.Calculate(context.Background(), &model.CashFlowRequest{
		PurchasePrice:   300000,
		DownPayment:     floatAddr(60000),
		InterestRate:    0.06,
		LoanTermMonths:  360,
		MonthlyRent:     2000,
		MonthlyExpenses: 500,
	})
	require.NoError(t, err, "calculating a conventional loan")
	assert.Equal(t, 240000.0, res.LoanPrincipal)
	assert.Equal(t, 1438.92, res.MonthlyMortgagePayment)
	assert.Equal(t, 61.08, res.MonthlyNetCashFlow)
	assert.Equal(t, 18000.0, res.AnnualNetOperatingIncome)
	assert.Equal(t, 0.06, res.CapRate)
	assert.Equal(t, 0.0122, res.CashOnCashReturn)
	assert.Equal(t, 17267.06, res.AnnualDebtService)
	assert.Equal(t, 60000.0, res.TotalCashInvested)
	assert.Equal(t, 500.0, res.MonthlyOperatingExpenses)
	assert.Equal(t, 2000.0, res.Breakdown.GrossMonthlyRent)
	assert.Equal(t, 1500.0, res.Breakdown.MonthlyNOI)
}

func TestMonthlyPaymentZeroRate(t *testing.T) {
	for _, tc := range []struct {
		principal float64
		months    int
	}{
		{120000, 360},
		{1000, 12},
		{99999.99, 7},
	} {
		p := cashflowuc.MonthlyPayment(tc.principal, 0, tc.months)
		assert.InDelta(
			t, tc.principal/float64(tc.months), p, 1e-9,
			"zero rate must degenerate to L/n; L=%v, n=%d",
			tc.principal, tc.months,
		)
		assert.False(t, math.IsNaN(p), "payment is NaN")
	}
}

func TestMonthlyPaymentAmortizesPrincipal(t *testing.T) {
	for _, tc := range []struct {
		principal, rate float64
		months          int
	}{
		{240000, 0.06, 360},
		{500000, 0.035, 180},
		{10000, 0.12, 24},
		{75000, 0.0001, 600},
	} {
		p := cashflowuc.MonthlyPayment(tc.principal, tc.rate, tc.months)
		r := tc.rate / 12
		balance := tc.principal
		for i := 0; i < tc.months; i++ {
			balance = balance*(1+r) - p
		}
		assert.InDelta(
			t, 0, balance, 1e-6*tc.principal,
			"balance must vanish after the last payment; %+v", tc,
		)
	}
}

func TestCalculateWithoutLoan(t *testing.T) {
	uc := cashflowuc.New()
	res, err := uc.Calculate(context.Background(), &model.CashFlowRequest{
		PurchasePrice:      200000,
		DownPaymentPercent: floatAddr(1),
		InterestRate:       0.07,
		LoanTermMonths:     360,
		MonthlyRent:        1500,
	})
	require.NoError(t, err, "calculating an all-cash purchase")
	assert.Equal(t, 0.0, res.LoanPrincipal)
	assert.Equal(t, 0.0, res.MonthlyMortgagePayment)
	assert.Equal(t, 1500.0, res.MonthlyNetCashFlow)
	assert.Equal(t, 0.09, res.CapRate)
	assert.Equal(t, 0.09, res.CashOnCashReturn)
}

func TestCalculateOperatingExpensesAndTax(t *testing.T) {
	uc := cashflowuc.New()
	res, err := uc.Calculate(context.Background(), &model.CashFlowRequest{
		PurchasePrice:      400000,
		DownPayment:        floatAddr(400000),
		ClosingCosts:       0,
		LoanTermMonths:     360,
		MonthlyRent:        1000,
		UnitCount:          4,
		VacancyRate:        0.05,
		ManagementFeeRate:  0.1,
		MonthlyTaxes:       300,
		MonthlyInsurance:   100,
		MonthlyMaintenance: 200,
		IncomeTaxRate:      0.25,
	})
	require.NoError(t, err, "calculating a four units building")
	b := res.Breakdown
	assert.Equal(t, 4000.0, b.GrossMonthlyRent)
	assert.Equal(t, 200.0, b.VacancyLoss)
	assert.Equal(t, 3800.0, b.EffectiveMonthlyRent)
	assert.Equal(t, 380.0, b.ManagementFee)
	assert.Equal(t, 1180.0, res.MonthlyOperatingExpenses)
	assert.Equal(t, 2820.0, res.MonthlyNetCashFlow)
	assert.Equal(t, 33840.0, res.AnnualBeforeTaxCashFlow)
	assert.Equal(t, 8460.0, res.AnnualIncomeTax)
	assert.Equal(t, 25380.0, res.AnnualAfterTaxCashFlow)
}

func TestCalculateNegativeCashFlowIsNotTaxed(t *testing.T) {
	uc := cashflowuc.New()
	res, err := uc.Calculate(context.Background(), &model.CashFlowRequest{
		PurchasePrice:   300000,
		DownPayment:     floatAddr(30000),
		InterestRate:    0.08,
		LoanTermMonths:  360,
		MonthlyRent:     1000,
		MonthlyExpenses: 400,
		IncomeTaxRate:   0.3,
	})
	require.NoError(t, err)
	assert.Less(t, res.MonthlyNetCashFlow, 0.0)
	assert.Equal(t, 0.0, res.AnnualIncomeTax)
	assert.Equal(t, res.AnnualBeforeTaxCashFlow, res.AnnualAfterTaxCashFlow)
	assert.False(t, math.Signbit(res.AnnualIncomeTax), "negative zero")
}

func TestCalculateInvalidInput(t *testing.T) {
	uc := cashflowuc.New()
	for _, tc := range []struct {
		name string
		req  model.CashFlowRequest
	}{
		{
			name: "zero cash invested",
			req: model.CashFlowRequest{
				PurchasePrice:  100000,
				DownPayment:    floatAddr(0),
				InterestRate:   0.05,
				LoanTermMonths: 360,
				MonthlyRent:    900,
			},
		},
		{
			name: "zero purchase price",
			req: model.CashFlowRequest{
				DownPayment:    floatAddr(1000),
				LoanTermMonths: 360,
			},
		},
		{
			name: "zero loan term",
			req: model.CashFlowRequest{
				PurchasePrice: 100000,
				DownPayment:   floatAddr(1000),
			},
		},
		{
			name: "down payment beyond price",
			req: model.CashFlowRequest{
				PurchasePrice:  100000,
				DownPayment:    floatAddr(100001),
				LoanTermMonths: 12,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Calculate(context.Background(), &tc.req)
			require.Error(t, err)
			assert.Equal(t, cerr.KindInvalidInput, cerr.KindOf(err))
		})
	}
}

func TestRoundHalvesAwayFromZero(t *testing.T) {
	for v, expected := range map[float64]float64{
		1.005:  1.01,
		1.015:  1.02,
		2.675:  2.68,
		8.345:  8.35,
		-1.005: -1.01,
		0.004:  0,
		-0.004: 0,
	} {
		res := cashflowuc.Round(&model.CashFlowResult{
			MonthlyNetCashFlow: v,
			CapRate:            v / 100,
		})
		assert.Equal(t, expected, res.MonthlyNetCashFlow, "rounding %v", v)
		assert.False(t, math.Signbit(res.MonthlyNetCashFlow) && expected == 0,
			"negative zero for %v", v,
		)
	}
	res := cashflowuc.Round(&model.CashFlowResult{CapRate: 0.012345})
	assert.Equal(t, 0.0123, res.CapRate)
	res = cashflowuc.Round(&model.CashFlowResult{CashOnCashReturn: 0.00125})
	assert.Equal(t, 0.0013, res.CashOnCashReturn)
}
