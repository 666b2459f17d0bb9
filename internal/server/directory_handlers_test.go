package server

import (
	"fmt"
	"net/http"
	"testing"

	"townsquare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateListing_AwaitsApproval(t *testing.T) {
	s, app := newTestApp(t)
	owner := createServerUser(t, s, "shop-owner", false)

	req := jsonRequest(http.MethodPost, "/api/directory", map[string]string{
		"name":     "Corner Bakery",
		"slug":     "corner-bakery",
		"category": "restaurant",
	})
	req.Header.Set("Authorization", authHeader(t, s, owner))
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var listing models.DirectoryListing
	decodeBody(t, resp, &listing)
	assert.False(t, listing.Approved)

	// slugs are unique
	req = jsonRequest(http.MethodPost, "/api/directory", map[string]string{
		"name":     "Another Bakery",
		"slug":     "corner-bakery",
		"category": "restaurant",
	})
	req.Header.Set("Authorization", authHeader(t, s, owner))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetListings_ApprovalVisibility(t *testing.T) {
	s, app := newTestApp(t)
	owner := createServerUser(t, s, "vis-owner", false)
	admin := createServerUser(t, s, "vis-admin", true)

	approved := &models.DirectoryListing{Name: "Approved Shop", Slug: "approved-shop",
		Category: "retail", UserID: owner.ID, Approved: true}
	pending := &models.DirectoryListing{Name: "Pending Shop", Slug: "pending-shop",
		Category: "retail", UserID: owner.ID, Approved: false}
	require.NoError(t, s.db.Create(approved).Error)
	require.NoError(t, s.db.Create(pending).Error)

	// public list shows only approved listings
	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/directory", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listings []models.DirectoryListing
	decodeBody(t, resp, &listings)
	require.Len(t, listings, 1)
	assert.Equal(t, "Approved Shop", listings[0].Name)

	// the unapproved listing 404s for anonymous readers by slug
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/directory/pending-shop", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// the owner sees both with ?mine=true
	req := jsonRequest(http.MethodGet, "/api/directory?mine=true", nil)
	req.Header.Set("Authorization", authHeader(t, s, owner))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mine []models.DirectoryListing
	decodeBody(t, resp, &mine)
	assert.Len(t, mine, 2)

	// admins see the full queue with ?all=true
	req = jsonRequest(http.MethodGet, "/api/directory?all=true", nil)
	req.Header.Set("Authorization", authHeader(t, s, admin))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []models.DirectoryListing
	decodeBody(t, resp, &all)
	assert.Len(t, all, 2)

	// but not regular users
	req = jsonRequest(http.MethodGet, "/api/directory?all=true", nil)
	req.Header.Set("Authorization", authHeader(t, s, createServerUser(t, s, "vis-nosy", false)))
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestSetListingApproval(t *testing.T) {
	s, app := newTestApp(t)
	owner := createServerUser(t, s, "appr-owner", false)
	admin := createServerUser(t, s, "appr-admin", true)

	pending := &models.DirectoryListing{Name: "Waiting Shop", Slug: "waiting-shop",
		Category: "services", UserID: owner.ID}
	require.NoError(t, s.db.Create(pending).Error)

	// approval is admin-only
	req := jsonRequest(http.MethodPost, fmt.Sprintf("/api/directory/%d/approve", pending.ID),
		map[string]bool{"approved": true})
	req.Header.Set("Authorization", authHeader(t, s, owner))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	req = jsonRequest(http.MethodPost, fmt.Sprintf("/api/directory/%d/approve", pending.ID),
		map[string]bool{"approved": true})
	req.Header.Set("Authorization", authHeader(t, s, admin))
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// now public by slug
	resp, err = app.Test(jsonRequest(http.MethodGet, "/api/directory/waiting-shop", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetDirectoryCategories(t *testing.T) {
	s, app := newTestApp(t)
	owner := createServerUser(t, s, "cat-owner", false)

	for i, cat := range []string{"retail", "retail", "health"} {
		listing := &models.DirectoryListing{
			Name:     fmt.Sprintf("Shop %d", i),
			Slug:     fmt.Sprintf("shop-%d", i),
			Category: cat,
			UserID:   owner.ID,
			Approved: true,
		}
		require.NoError(t, s.db.Create(listing).Error)
	}

	resp, err := app.Test(jsonRequest(http.MethodGet, "/api/directory/categories", nil))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var categories []string
	decodeBody(t, resp, &categories)
	assert.ElementsMatch(t, []string{"retail", "health"}, categories)
}
