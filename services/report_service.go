package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"hotel-pms/models"
	"hotel-pms/repository"
	"hotel-pms/utils"
)

const maxReportDays = 366

// ReportService aggregates read-only views for dashboards.
type ReportService struct {
	deps Deps
}

func NewReportService(deps Deps) *ReportService {
	return &ReportService{deps: deps.withDefaults()}
}

type Dashboard struct {
	Date          string                    `json:"date"`
	TotalRooms    int                       `json:"total_rooms"`
	OccupiedRooms int                       `json:"occupied_rooms"`
	OccupancyPct  decimal.Decimal           `json:"occupancy_pct"`
	Arrivals      int                       `json:"arrivals"`
	Departures    int                       `json:"departures"`
	InHouse       int                       `json:"in_house"`
	InHouseGuests int                       `json:"in_house_guests"`
	RoomsByStatus map[models.RoomStatus]int `json:"rooms_by_status"`
}

// sellsNight reports whether r holds its room on the night starting at day.
func sellsNight(r models.Reservation, day time.Time) bool {
	if r.Status == models.StatusCancelled || r.Status == models.StatusNoShow {
		return false
	}
	return !r.CheckInDate.After(day) && day.Before(r.CheckOutDate)
}

func percent(part, whole int) decimal.Decimal {
	if whole == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).Mul(hundred).Div(decimal.NewFromInt(int64(whole))).Round(2)
}

func (s *ReportService) Dashboard(ctx context.Context, hotelID uint, date time.Time) (*Dashboard, error) {
	day := utils.DateOnly(date)
	rooms, err := s.deps.Store.ListRooms(ctx, hotelID, repository.RoomFilter{})
	if err != nil {
		return nil, internalError("list rooms", err)
	}
	res, err := s.deps.Store.ListReservations(ctx, hotelID, repository.ReservationFilter{
		StayFrom: day.AddDate(0, 0, -1),
		StayTo:   day.AddDate(0, 0, 1),
	})
	if err != nil {
		return nil, internalError("list reservations", err)
	}

	d := &Dashboard{
		Date:          utils.FormatDate(day),
		TotalRooms:    len(rooms),
		RoomsByStatus: map[models.RoomStatus]int{},
	}
	for _, r := range rooms {
		d.RoomsByStatus[r.Status]++
	}
	sold := map[uint]bool{}
	for _, r := range res {
		if sellsNight(r, day) {
			sold[r.RoomID] = true
		}
		if r.CheckInDate.Equal(day) && (r.Status == models.StatusConfirmed || r.Status == models.StatusCheckedIn) {
			d.Arrivals++
		}
		if r.CheckOutDate.Equal(day) && (r.Status == models.StatusCheckedIn || r.Status == models.StatusCheckedOut) {
			d.Departures++
		}
		if r.Status == models.StatusCheckedIn {
			d.InHouse++
			d.InHouseGuests += r.Adults + r.Children
		}
	}
	d.OccupiedRooms = len(sold)
	d.OccupancyPct = percent(d.OccupiedRooms, d.TotalRooms)
	return d, nil
}

type OccupancyDay struct {
	Date          string          `json:"date"`
	OccupiedRooms int             `json:"occupied_rooms"`
	OccupancyPct  decimal.Decimal `json:"occupancy_pct"`
}

type OccupancyReport struct {
	From       string          `json:"from"`
	To         string          `json:"to"`
	TotalRooms int             `json:"total_rooms"`
	AveragePct decimal.Decimal `json:"average_pct"`
	Days       []OccupancyDay  `json:"days"`
}

func reportRange(from, to time.Time) (time.Time, time.Time, error) {
	from, to = utils.DateOnly(from), utils.DateOnly(to)
	if to.Before(from) {
		return from, to, validationError("error.invalidDates", "to must not be before from")
	}
	end := to.AddDate(0, 0, 1)
	if end.Sub(from).Hours()/24 > maxReportDays {
		return from, to, validationError("error.rangeTooLarge", "report range is limited to 366 days")
	}
	return from, end, nil
}

// Occupancy counts sold rooms per night for every day in [from, to].
func (s *ReportService) Occupancy(ctx context.Context, hotelID uint, from, to time.Time) (*OccupancyReport, error) {
	start, end, err := reportRange(from, to)
	if err != nil {
		return nil, err
	}
	rooms, err := s.deps.Store.ListRooms(ctx, hotelID, repository.RoomFilter{})
	if err != nil {
		return nil, internalError("list rooms", err)
	}
	res, err := s.deps.Store.ListReservations(ctx, hotelID, repository.ReservationFilter{StayFrom: start, StayTo: end})
	if err != nil {
		return nil, internalError("list reservations", err)
	}

	rep := &OccupancyReport{
		From:       utils.FormatDate(start),
		To:         utils.FormatDate(end.AddDate(0, 0, -1)),
		TotalRooms: len(rooms),
		Days:       []OccupancyDay{},
	}
	sum := decimal.Zero
	utils.EachDay(start, end, func(day time.Time) {
		sold := map[uint]bool{}
		for _, r := range res {
			if sellsNight(r, day) {
				sold[r.RoomID] = true
			}
		}
		pct := percent(len(sold), len(rooms))
		sum = sum.Add(pct)
		rep.Days = append(rep.Days, OccupancyDay{Date: utils.FormatDate(day), OccupiedRooms: len(sold), OccupancyPct: pct})
	})
	if len(rep.Days) > 0 {
		rep.AveragePct = sum.Div(decimal.NewFromInt(int64(len(rep.Days)))).Round(2)
	}
	return rep, nil
}

type RevenueDay struct {
	Date     string          `json:"date"`
	Invoices int             `json:"invoices"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Paid     decimal.Decimal `json:"paid"`
	Refunded decimal.Decimal `json:"refunded"`
}

type RevenueReport struct {
	From   string       `json:"from"`
	To     string       `json:"to"`
	Days   []RevenueDay `json:"days"`
	Totals RevenueDay   `json:"totals"`
}

func (d *RevenueDay) add(inv models.Invoice) {
	d.Invoices++
	if inv.Status == models.InvoiceRefunded {
		d.Refunded = d.Refunded.Add(inv.Total)
		return
	}
	d.Subtotal = d.Subtotal.Add(inv.Subtotal)
	d.Tax = d.Tax.Add(inv.TaxTotal)
	d.Total = d.Total.Add(inv.Total)
	d.Paid = d.Paid.Add(inv.AmountPaid)
}

// Revenue buckets invoices by the UTC date they were issued. Refunded
// invoices are reported separately and excluded from the sums.
func (s *ReportService) Revenue(ctx context.Context, hotelID uint, from, to time.Time) (*RevenueReport, error) {
	start, end, err := reportRange(from, to)
	if err != nil {
		return nil, err
	}
	invoices, err := s.deps.Store.ListInvoices(ctx, hotelID, repository.InvoiceFilter{IssuedFrom: start, IssuedTo: end})
	if err != nil {
		return nil, internalError("list invoices", err)
	}

	zero := func(date string) RevenueDay {
		return RevenueDay{Date: date, Subtotal: decimal.Zero, Tax: decimal.Zero, Total: decimal.Zero, Paid: decimal.Zero, Refunded: decimal.Zero}
	}
	rep := &RevenueReport{
		From:   utils.FormatDate(start),
		To:     utils.FormatDate(end.AddDate(0, 0, -1)),
		Days:   []RevenueDay{},
		Totals: zero(""),
	}
	index := map[string]int{}
	utils.EachDay(start, end, func(day time.Time) {
		key := utils.FormatDate(day)
		index[key] = len(rep.Days)
		rep.Days = append(rep.Days, zero(key))
	})
	for _, inv := range invoices {
		i, ok := index[utils.FormatDate(inv.IssuedAt.UTC())]
		if !ok {
			continue
		}
		rep.Days[i].add(inv)
		rep.Totals.add(inv)
	}
	return rep, nil
}
