package server

import (
	"fmt"
	"net/http"
	"testing"

	"townsquare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitEnrollment(t *testing.T) {
	s, app := newTestApp(t)
	student := createServerUser(t, s, "student", false)

	req := jsonRequest(http.MethodPost, "/api/enrollments", map[string]string{
		"course": "Pottery for Beginners",
		"email":  "student@example.com",
	})
	req.Header.Set("Authorization", authHeader(t, s, student))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var enrollment models.CourseEnrollment
	decodeBody(t, resp, &enrollment)
	assert.Equal(t, models.EnrollmentPending, enrollment.Status)
	assert.Equal(t, student.ID, enrollment.UserID)

	// missing course is rejected
	req = jsonRequest(http.MethodPost, "/api/enrollments", map[string]string{
		"email": "student@example.com",
	})
	req.Header.Set("Authorization", authHeader(t, s, student))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEnrollmentListing(t *testing.T) {
	s, app := newTestApp(t)
	student := createServerUser(t, s, "list-student", false)
	other := createServerUser(t, s, "list-other", false)
	admin := createServerUser(t, s, "list-admin", true)

	mine := &models.CourseEnrollment{Course: "Watercolor", UserID: student.ID,
		Email: "list-student@example.com", Status: models.EnrollmentPending}
	theirs := &models.CourseEnrollment{Course: "Woodworking", UserID: other.ID,
		Email: "list-other@example.com", Status: models.EnrollmentPending}
	require.NoError(t, s.db.Create(mine).Error)
	require.NoError(t, s.db.Create(theirs).Error)

	// /me only shows the caller's enrollments
	req := jsonRequest(http.MethodGet, "/api/enrollments/me", nil)
	req.Header.Set("Authorization", authHeader(t, s, student))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var own []models.CourseEnrollment
	decodeBody(t, resp, &own)
	require.Len(t, own, 1)
	assert.Equal(t, "Watercolor", own[0].Course)

	// the full list is admin-only
	req = jsonRequest(http.MethodGet, "/api/enrollments", nil)
	req.Header.Set("Authorization", authHeader(t, s, student))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = jsonRequest(http.MethodGet, "/api/enrollments", nil)
	req.Header.Set("Authorization", authHeader(t, s, admin))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []models.CourseEnrollment
	decodeBody(t, resp, &all)
	assert.Len(t, all, 2)
}

func TestUpdateEnrollmentStatus(t *testing.T) {
	s, app := newTestApp(t)
	student := createServerUser(t, s, "status-student", false)
	admin := createServerUser(t, s, "status-admin", true)

	enrollment := &models.CourseEnrollment{Course: "Ceramics", UserID: student.ID,
		Email: "status-student@example.com", Status: models.EnrollmentPending}
	require.NoError(t, s.db.Create(enrollment).Error)

	// the applicant cannot confirm their own application
	req := jsonRequest(http.MethodPut, fmt.Sprintf("/api/enrollments/%d/status", enrollment.ID),
		map[string]string{"status": "confirmed"})
	req.Header.Set("Authorization", authHeader(t, s, student))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// but may cancel it
	req = jsonRequest(http.MethodPut, fmt.Sprintf("/api/enrollments/%d/status", enrollment.ID),
		map[string]string{"status": "cancelled"})
	req.Header.Set("Authorization", authHeader(t, s, student))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// admins can set any status
	req = jsonRequest(http.MethodPut, fmt.Sprintf("/api/enrollments/%d/status", enrollment.ID),
		map[string]string{"status": "confirmed"})
	req.Header.Set("Authorization", authHeader(t, s, admin))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stored models.CourseEnrollment
	require.NoError(t, s.db.First(&stored, enrollment.ID).Error)
	assert.Equal(t, models.EnrollmentConfirmed, stored.Status)
}
