package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/models"
)

func TestReport_Dashboard(t *testing.T) {
	f := newFixture(t, Policy{})
	inHouse := f.mustBook(t, f.room101, "2024-06-01", "2024-06-04")
	_, err := f.svcs.Stays.CheckIn(f.ctx, f.hotel.ID, inHouse.ID, CheckInInput{})
	require.NoError(t, err)
	f.mustBook(t, f.room102, "2024-06-03", "2024-06-05")
	cancelled := f.mustBook(t, f.room201, "2024-06-03", "2024-06-04")
	_, err = f.svcs.Reservations.Cancel(f.ctx, f.hotel.ID, cancelled.ID, "")
	require.NoError(t, err)

	d, err := f.svcs.Reports.Dashboard(f.ctx, f.hotel.ID, day(t, "2024-06-03"))
	require.NoError(t, err)
	assert.Equal(t, "2024-06-03", d.Date)
	assert.Equal(t, 3, d.TotalRooms)
	assert.Equal(t, 2, d.OccupiedRooms)
	assert.True(t, dec("66.67").Equal(d.OccupancyPct))
	assert.Equal(t, 1, d.Arrivals)
	assert.Equal(t, 0, d.Departures)
	assert.Equal(t, 1, d.InHouse)
	assert.Equal(t, 2, d.InHouseGuests)
	assert.Equal(t, 1, d.RoomsByStatus[models.RoomOccupied])
	assert.Equal(t, 2, d.RoomsByStatus[models.RoomAvailable])
}

func TestReport_Occupancy(t *testing.T) {
	f := newFixture(t, Policy{})
	f.mustBook(t, f.room101, "2024-06-01", "2024-06-03")
	f.mustBook(t, f.room102, "2024-06-02", "2024-06-03")

	rep, err := f.svcs.Reports.Occupancy(f.ctx, f.hotel.ID, day(t, "2024-06-01"), day(t, "2024-06-03"))
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01", rep.From)
	assert.Equal(t, "2024-06-03", rep.To)
	require.Len(t, rep.Days, 3)
	assert.Equal(t, 1, rep.Days[0].OccupiedRooms)
	assert.Equal(t, 2, rep.Days[1].OccupiedRooms)
	assert.Equal(t, 0, rep.Days[2].OccupiedRooms, "checkout day is not a sold night")
	// (33.33 + 66.67 + 0) / 3
	assert.True(t, dec("33.33").Equal(rep.AveragePct))

	_, err = f.svcs.Reports.Occupancy(f.ctx, f.hotel.ID, day(t, "2024-06-03"), day(t, "2024-06-01"))
	requireKind(t, err, KindValidation, "error.invalidDates")
	_, err = f.svcs.Reports.Occupancy(f.ctx, f.hotel.ID, day(t, "2024-01-01"), day(t, "2025-06-01"))
	requireKind(t, err, KindValidation, "error.rangeTooLarge")
}

func TestReport_Revenue(t *testing.T) {
	f := newFixture(t, Policy{})
	item := []LineInput{{Description: "Parking", Quantity: dec("1"), UnitPrice: dec("20")}}

	kept, err := f.svcs.Billing.CreateInvoice(f.ctx, f.hotel.ID, CreateInvoiceInput{Items: item, Payment: &PaymentInput{Amount: dec("10")}})
	require.NoError(t, err)
	refunded, err := f.svcs.Billing.CreateInvoice(f.ctx, f.hotel.ID, CreateInvoiceInput{Items: item, Payment: &PaymentInput{Amount: dec("22")}})
	require.NoError(t, err)
	_, err = f.svcs.Billing.RefundInvoice(f.ctx, f.hotel.ID, refunded.ID, "", "")
	require.NoError(t, err)

	issued := kept.IssuedAt
	rep, err := f.svcs.Reports.Revenue(f.ctx, f.hotel.ID, issued, issued)
	require.NoError(t, err)
	require.Len(t, rep.Days, 1)
	assert.Equal(t, 2, rep.Totals.Invoices)
	assert.True(t, dec("20").Equal(rep.Totals.Subtotal))
	assert.True(t, dec("2").Equal(rep.Totals.Tax))
	assert.True(t, dec("22").Equal(rep.Totals.Total))
	assert.True(t, dec("10").Equal(rep.Totals.Paid))
	assert.True(t, dec("22").Equal(rep.Totals.Refunded))
	assert.Equal(t, rep.Totals.Total.String(), rep.Days[0].Total.String())
}
