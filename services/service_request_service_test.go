package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/models"
	"hotel-pms/repository"
)

func TestServiceRequest_Lifecycle(t *testing.T) {
	f := newFixture(t, Policy{})
	r := f.mustBook(t, f.room101, "2024-06-01", "2024-06-04")

	req, err := f.svcs.ServiceRequests.Create(f.ctx, f.hotel.ID, ServiceRequestInput{ReservationID: r.ID, Description: "  extra pillow  "})
	require.NoError(t, err)
	assert.Equal(t, models.CategoryOther, req.Category)
	assert.Equal(t, "extra pillow", req.Description)
	assert.Equal(t, models.RequestOpen, req.Status)
	assert.Equal(t, f.room101.ID, req.RoomID)

	done, err := f.svcs.ServiceRequests.Complete(f.ctx, f.hotel.ID, req.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.RequestCompleted, done.Status)
	require.NotNil(t, done.CompletedAt)

	_, err = f.svcs.ServiceRequests.Cancel(f.ctx, f.hotel.ID, req.ID)
	requireKind(t, err, KindConflict, "error.serviceRequestClosed")

	open := models.RequestOpen
	list, err := f.svcs.ServiceRequests.List(f.ctx, f.hotel.ID, repository.ServiceRequestFilter{Status: &open})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestServiceRequest_Validation(t *testing.T) {
	f := newFixture(t, Policy{})
	r := f.mustBook(t, f.room101, "2024-06-01", "2024-06-04")

	_, err := f.svcs.ServiceRequests.Create(f.ctx, f.hotel.ID, ServiceRequestInput{ReservationID: r.ID, Category: "SPA", Description: "x"})
	requireKind(t, err, KindValidation, "error.invalidCategory")

	_, err = f.svcs.ServiceRequests.Create(f.ctx, f.hotel.ID, ServiceRequestInput{ReservationID: r.ID})
	requireKind(t, err, KindValidation, "error.descriptionRequired")

	_, err = f.svcs.ServiceRequests.Create(f.ctx, f.hotel.ID, ServiceRequestInput{ReservationID: r.ID, Description: "x", Amount: dec("-1")})
	requireKind(t, err, KindValidation, "error.invalidAmount")

	_, err = f.svcs.ServiceRequests.Create(f.ctx, f.hotel.ID, ServiceRequestInput{ReservationID: 999, Description: "x"})
	requireKind(t, err, KindNotFound, "error.reservationNotFound")

	_, err = f.svcs.Reservations.Cancel(f.ctx, f.hotel.ID, r.ID, "")
	require.NoError(t, err)
	_, err = f.svcs.ServiceRequests.Create(f.ctx, f.hotel.ID, ServiceRequestInput{ReservationID: r.ID, Description: "x"})
	requireKind(t, err, KindConflict, "error.reservationClosed")
}
