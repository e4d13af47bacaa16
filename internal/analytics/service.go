package analytics

import (
	"context"
	"math"
	"sort"

	"fitbook/internal/reservation"
)

// ReservationSource is the read path into the reservation store. Analytics
// never mutates; a consistent snapshot read is enough.
type ReservationSource interface {
	Query(ctx context.Context, f reservation.Filter) ([]reservation.Reservation, error)
}

type Service struct {
	source   ReservationSource
	topHours int
}

func NewService(source ReservationSource, topHours int) *Service {
	if topHours <= 0 {
		topHours = 5
	}
	return &Service{source: source, topHours: topHours}
}

// Snapshot fetches the matching reservations once and feeds every grouping
// from that single pass.
func (s *Service) Snapshot(ctx context.Context, f reservation.Filter) (*Snapshot, error) {
	list, err := s.source.Query(ctx, f)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		BySessionType:   make(map[reservation.SessionType]int),
		ByMonth:         []MonthBucket{},
		TopHours:        []HourBucket{},
		RevenueByClient: []ClientRevenue{},
	}

	type hourAgg struct {
		count   int
		revenue float64
	}
	var (
		months      = make(map[string]*MonthBucket)
		hours       [24]hourAgg
		clients     = make(map[string]*ClientRevenue)
		revenueFrom int
	)

	for i := range list {
		r := &list[i]
		snap.TotalCount++

		switch r.State {
		case reservation.StatePending:
			snap.PendingCount++
		case reservation.StateConfirmed:
			snap.ConfirmedCount++
		case reservation.StateCompleted:
			snap.CompletedCount++
		case reservation.StateNoShow:
			snap.NoShowCount++
		case reservation.StateCancelledByClient, reservation.StateCancelledByCenter:
			snap.CancelledCount++
		}

		snap.BySessionType[r.SessionType]++

		monthKey := r.StartAt.Format("2006-01")
		mb := months[monthKey]
		if mb == nil {
			mb = &MonthBucket{Month: monthKey}
			months[monthKey] = mb
		}
		mb.Count++

		hour := r.StartAt.Hour()
		hours[hour].count++

		earnsRevenue := r.Paid &&
			(r.State == reservation.StateCompleted || r.State == reservation.StateConfirmed)
		if earnsRevenue {
			snap.TotalRevenue += r.Price
			revenueFrom++
			mb.Revenue += r.Price
			hours[hour].revenue += r.Price

			cr := clients[r.ClientID]
			if cr == nil {
				cr = &ClientRevenue{ClientID: r.ClientID, ClientName: r.ClientName}
				clients[r.ClientID] = cr
			}
			cr.Revenue += r.Price
		}
	}

	if revenueFrom > 0 {
		snap.AvgRevenue = snap.TotalRevenue / float64(revenueFrom)
	}
	if snap.TotalCount > 0 {
		snap.OccupancyRate = math.Round(float64(snap.CompletedCount) / float64(snap.TotalCount) * 100)
		snap.CancellationRate = math.Round(float64(snap.CancelledCount) / float64(snap.TotalCount) * 100)
	}

	for _, mb := range months {
		snap.ByMonth = append(snap.ByMonth, *mb)
	}
	sort.Slice(snap.ByMonth, func(i, j int) bool {
		return snap.ByMonth[i].Month < snap.ByMonth[j].Month
	})

	for h := 0; h < 24; h++ {
		if hours[h].count > 0 {
			snap.TopHours = append(snap.TopHours, HourBucket{
				Hour:    h,
				Count:   hours[h].count,
				Revenue: hours[h].revenue,
			})
		}
	}
	// Busiest first; on equal counts the earlier hour wins. The slice is
	// built in hour order so the stable sort keeps that tie-break.
	sort.SliceStable(snap.TopHours, func(i, j int) bool {
		return snap.TopHours[i].Count > snap.TopHours[j].Count
	})
	if len(snap.TopHours) > s.topHours {
		snap.TopHours = snap.TopHours[:s.topHours]
	}

	for _, cr := range clients {
		if cr.Revenue > 0 {
			snap.RevenueByClient = append(snap.RevenueByClient, *cr)
		}
	}
	sort.Slice(snap.RevenueByClient, func(i, j int) bool {
		if snap.RevenueByClient[i].Revenue != snap.RevenueByClient[j].Revenue {
			return snap.RevenueByClient[i].Revenue > snap.RevenueByClient[j].Revenue
		}
		return snap.RevenueByClient[i].ClientID < snap.RevenueByClient[j].ClientID
	})

	return snap, nil
}
