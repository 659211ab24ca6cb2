package service_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umorjyoti/simplifly/internal/apperr"
	"github.com/umorjyoti/simplifly/internal/billing"
	"github.com/umorjyoti/simplifly/internal/models"
	"github.com/umorjyoti/simplifly/internal/service"
)

func TestGenerateBill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	member := f.register(t, "member@example.com")
	ws := f.workspace(t, owner, member)
	other := f.workspace(t, owner)

	a := f.completedStory(t, owner, ws.ID, "A", 3)
	b := f.completedStory(t, member, ws.ID, "B", 2)
	foreign := f.completedStory(t, owner, other.ID, "Foreign", 10)
	f.story(t, owner, ws.ID, "Open")

	item, err := f.svc.CreateBillItem(ctx, owner, ws.ID, service.BillItemInput{Title: "Setup", Hours: 1})
	require.NoError(t, err)

	billable, err := f.svc.ListBillable(ctx, owner, ws.ID, service.BillableQuery{})
	require.NoError(t, err)
	assert.Len(t, billable.Tickets, 2)
	assert.Len(t, billable.BillItems, 1)

	mine, err := f.svc.ListBillable(ctx, owner, ws.ID, service.BillableQuery{Scope: billing.ScopeUser, UserID: member.UserID})
	require.NoError(t, err)
	require.Len(t, mine.Tickets, 1)
	assert.Equal(t, b.ID, mine.Tickets[0].ID)
	assert.Empty(t, mine.BillItems)

	inv, err := f.svc.GenerateBill(ctx, owner, ws.ID, billing.Selection{
		TicketIDs:   []string{a.ID, b.ID, foreign.ID},
		BillItemIDs: []string{item.ID},
		HourlyRate:  50,
		Scope:       billing.ScopeAgency,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, inv.Totals.TotalItems)
	assert.Equal(t, 2, inv.Totals.TicketCount)
	assert.Equal(t, 1, inv.Totals.ManualCount)
	assert.InDelta(t, 6.0, inv.Totals.TotalHours, 1e-9)
	assert.InDelta(t, 300.0, inv.Totals.TotalAmount, 1e-9)
	assert.Equal(t, models.CurrencyUSD, inv.Workspace.Currency)
	assert.Equal(t, f.now, inv.GeneratedAt)

	_, err = f.svc.GenerateBill(ctx, owner, ws.ID, billing.Selection{HourlyRate: 50, Scope: billing.ScopeAgency})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.svc.GenerateBill(ctx, member, ws.ID, billing.Selection{TicketIDs: []string{a.ID}, HourlyRate: 50, Scope: billing.ScopeAgency})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestListBillablePeriod(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	ws := f.workspace(t, owner)

	early := f.completedStory(t, owner, ws.ID, "Early", 4)
	f.now = time.Date(2024, time.November, 20, 9, 0, 0, 0, time.UTC)
	late := f.completedStory(t, owner, ws.ID, "Late", 1)

	res, err := f.svc.ListBillable(ctx, owner, ws.ID, service.BillableQuery{Period: "monthly"})
	require.NoError(t, err)
	require.NotNil(t, res.Period)
	ids := []string{}
	for _, tk := range res.Tickets {
		ids = append(ids, tk.ID)
	}
	assert.ElementsMatch(t, []string{early.ID, late.ID}, ids)

	lastMonth := time.Date(2024, time.October, 5, 0, 0, 0, 0, time.UTC)
	res, err = f.svc.ListBillable(ctx, owner, ws.ID, service.BillableQuery{Period: "monthly", Date: &lastMonth})
	require.NoError(t, err)
	assert.Empty(t, res.Tickets)

	_, err = f.svc.ListBillable(ctx, owner, ws.ID, service.BillableQuery{Scope: billing.ScopeUser})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestExportBill(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	ws := f.workspace(t, owner)
	a := f.completedStory(t, owner, ws.ID, "A", 3)

	var buf bytes.Buffer
	inv, err := f.svc.ExportBill(ctx, owner, ws.ID, billing.Selection{
		TicketIDs:  []string{a.ID},
		HourlyRate: 20,
		Scope:      billing.ScopeAgency,
	}, &buf)
	require.NoError(t, err)
	assert.InDelta(t, 60.0, inv.Totals.TotalAmount, 1e-9)
	require.Greater(t, buf.Len(), 4)
	assert.Equal(t, []byte("PK"), buf.Bytes()[:2])
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	ws := f.workspace(t, owner)
	other := f.workspace(t, owner)

	a := f.completedStory(t, owner, ws.ID, "A", 3)
	b := f.completedStory(t, owner, ws.ID, "B", 2)
	foreign := f.completedStory(t, owner, other.ID, "Foreign", 1)

	updated, err := f.svc.UpdatePaymentStatus(ctx, owner, ws.ID, []string{a.ID, b.ID, foreign.ID, "missing"}, models.PaymentBilled)
	require.NoError(t, err)
	require.Len(t, updated, 2)
	for _, tk := range updated {
		assert.Equal(t, models.PaymentBilled, tk.PaymentStatus)
	}

	stored, err := f.svc.GetTicket(ctx, owner, foreign.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPending, stored.PaymentStatus)

	history, err := f.svc.TicketHistory(ctx, owner, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ActionPaymentStatusChanged, history[0].Action)
	assert.Equal(t, string(models.PaymentBilled), *history[0].NewValue)

	billable, err := f.svc.ListBillable(ctx, owner, ws.ID, service.BillableQuery{})
	require.NoError(t, err)
	assert.Empty(t, billable.Tickets)

	before := f.store.HistoryCount(a.ID)
	_, err = f.svc.UpdatePaymentStatus(ctx, owner, ws.ID, []string{a.ID}, models.PaymentBilled)
	require.NoError(t, err)
	assert.Equal(t, before, f.store.HistoryCount(a.ID))

	_, err = f.svc.UpdatePaymentStatus(ctx, owner, ws.ID, []string{a.ID}, "paid")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.UpdatePaymentStatus(ctx, owner, ws.ID, nil, models.PaymentBilled)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestBillItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, "owner@example.com")
	member := f.register(t, "member@example.com")
	outsider := f.register(t, "outsider@example.com")
	ws := f.workspace(t, owner, member)

	_, err := f.svc.CreateBillItem(ctx, owner, ws.ID, service.BillItemInput{Title: "x", Hours: 0})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.CreateBillItem(ctx, owner, ws.ID, service.BillItemInput{Title: " ", Hours: 1})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.CreateBillItem(ctx, owner, ws.ID, service.BillItemInput{Title: "x", Hours: 1, UserID: &outsider.UserID})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = f.svc.CreateBillItem(ctx, member, ws.ID, service.BillItemInput{Title: "x", Hours: 1})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	item, err := f.svc.CreateBillItem(ctx, owner, ws.ID, service.BillItemInput{Title: "Hosting", Hours: 2, UserID: &member.UserID})
	require.NoError(t, err)

	hours := 3.5
	updated, err := f.svc.UpdateBillItem(ctx, owner, item.ID, service.BillItemUpdate{Hours: &hours, UserID: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, 3.5, updated.Hours)
	assert.Nil(t, updated.UserID)

	items, err := f.svc.ListBillItems(ctx, owner, ws.ID, "")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, f.svc.DeleteBillItem(ctx, owner, item.ID))
	assert.ErrorIs(t, f.svc.DeleteBillItem(ctx, owner, item.ID), apperr.ErrNotFound)
}
