package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/adlift/cashout/internal/tenantctx"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func identityEngine(extra ...gin.HandlerFunc) (*gin.Engine, *tenantctx.Actor) {
	gin.SetMode(gin.TestMode)
	captured := &tenantctx.Actor{}

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware(), Identity())
	handlers := append(extra, func(c *gin.Context) {
		if actor, ok := tenantctx.ActorFromContext(c.Request.Context()); ok {
			*captured = actor
		}
		c.Status(http.StatusNoContent)
	})
	engine.GET("/probe", handlers...)
	return engine, captured
}

func TestIdentity(t *testing.T) {
	t.Run("Missing Actor Header", func(t *testing.T) {
		engine, _ := identityEngine()
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/probe", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Attaches Actor", func(t *testing.T) {
		engine, captured := identityEngine()
		companyID := snowflake.ID(314)

		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(HeaderActorID, "user_1")
		req.Header.Set(HeaderActorRole, "Company")
		req.Header.Set(HeaderCompanyID, companyID.String())

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "user_1", captured.ID)
		assert.Equal(t, tenantctx.RoleCompany, captured.Role)
		assert.Equal(t, companyID, captured.CompanyID)
	})

	t.Run("Garbage Company Header Ignored", func(t *testing.T) {
		engine, captured := identityEngine()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(HeaderActorID, "user_1")
		req.Header.Set(HeaderCompanyID, "not-a-number")

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Zero(t, captured.CompanyID)
	})
}

func TestRequireRole(t *testing.T) {
	t.Run("Role Allowed", func(t *testing.T) {
		engine, _ := identityEngine(RequireRole(tenantctx.RoleAdmin))
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(HeaderActorID, "admin_1")
		req.Header.Set(HeaderActorRole, tenantctx.RoleAdmin)

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Role Denied", func(t *testing.T) {
		engine, _ := identityEngine(RequireRole(tenantctx.RoleAdmin))
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(HeaderActorID, "user_1")
		req.Header.Set(HeaderActorRole, tenantctx.RoleCompany)

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
