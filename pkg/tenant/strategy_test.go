package tenant_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantguard/pkg/tenant"
)

func TestHostStrategy(t *testing.T) {
	t.Parallel()

	t.Run("exact mapping", func(t *testing.T) {
		t.Parallel()

		strategy, err := tenant.NewHostStrategy(map[string]string{"acme.platform.test": "tenant-acme"}, "")
		require.NoError(t, err)
		resolver := tenant.NewResolver(strategy)

		req := httptest.NewRequest("GET", "http://acme.platform.test/api", nil)
		tc, err := resolver.Resolve(req)
		require.NoError(t, err)

		assert.Equal(t, "tenant-acme", tc.TenantID)
		assert.Equal(t, tenant.MethodHostMapping, tc.Method)
		assert.Equal(t, "acme.platform.test", tc.ResolvedFrom)
	})

	t.Run("mapping ignores port", func(t *testing.T) {
		t.Parallel()

		strategy, err := tenant.NewHostStrategy(map[string]string{"acme.platform.test": "tenant-acme"}, "")
		require.NoError(t, err)
		resolver := tenant.NewResolver(strategy)

		req := httptest.NewRequest("GET", "http://acme.platform.test:8443/api", nil)
		tc, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "tenant-acme", tc.TenantID)
	})

	t.Run("pattern capture", func(t *testing.T) {
		t.Parallel()

		strategy, err := tenant.NewHostStrategy(nil, "{tenant}.platform.test")
		require.NoError(t, err)
		resolver := tenant.NewResolver(strategy)

		req := httptest.NewRequest("GET", "http://beta.platform.test/", nil)
		tc, err := resolver.Resolve(req)
		require.NoError(t, err)

		assert.Equal(t, "beta", tc.TenantID)
		assert.Equal(t, tenant.MethodHostPattern, tc.Method)
	})

	t.Run("mapping wins over pattern", func(t *testing.T) {
		t.Parallel()

		strategy, err := tenant.NewHostStrategy(
			map[string]string{"acme.platform.test": "tenant-acme"},
			"{tenant}.platform.test",
		)
		require.NoError(t, err)
		resolver := tenant.NewResolver(strategy)

		req := httptest.NewRequest("GET", "http://acme.platform.test/", nil)
		tc, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "tenant-acme", tc.TenantID)
		assert.Equal(t, tenant.MethodHostMapping, tc.Method)
	})

	t.Run("unmapped host is not found", func(t *testing.T) {
		t.Parallel()

		strategy, err := tenant.NewHostStrategy(map[string]string{"acme.platform.test": "tenant-acme"}, "")
		require.NoError(t, err)
		resolver := tenant.NewResolver(strategy)

		req := httptest.NewRequest("GET", "http://other.platform.test/", nil)
		_, err = resolver.Resolve(req)

		var nfe *tenant.NotFoundError
		require.ErrorAs(t, err, &nfe)
		assert.Equal(t, "other.platform.test", nfe.Identifier)
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("requires mapping or pattern", func(t *testing.T) {
		t.Parallel()

		_, err := tenant.NewHostStrategy(nil, "")
		assert.Error(t, err)
	})

	t.Run("pattern requires placeholder", func(t *testing.T) {
		t.Parallel()

		_, err := tenant.NewHostStrategy(nil, "platform.test")
		assert.Error(t, err)
	})
}

func TestSubdomainStrategy(t *testing.T) {
	t.Parallel()

	t.Run("segment at position", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(tenant.NewSubdomainStrategy(0, "app.example.com"))

		req := httptest.NewRequest("GET", "http://acme.app.example.com/", nil)
		tc, err := resolver.Resolve(req)
		require.NoError(t, err)

		assert.Equal(t, "acme", tc.TenantID)
		assert.Equal(t, tenant.MethodSubdomain, tc.Method)
		assert.Equal(t, "acme", tc.ResolvedFrom)
	})

	t.Run("position beyond segment count fails with resolution error", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(tenant.NewSubdomainStrategy(10, ""))

		req := httptest.NewRequest("GET", "http://acme.app.example.com/", nil)
		_, err := resolver.Resolve(req)

		var re *tenant.ResolutionError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "subdomain", re.Strategy)
	})

	t.Run("base domain mismatch fails", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(tenant.NewSubdomainStrategy(0, "app.example.com"))

		req := httptest.NewRequest("GET", "http://acme.other.example.com/", nil)
		_, err := resolver.Resolve(req)

		var re *tenant.ResolutionError
		assert.ErrorAs(t, err, &re)
	})
}

func TestHeaderStrategy(t *testing.T) {
	t.Parallel()

	t.Run("id header", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(tenant.NewHeaderStrategy("X-Tenant-ID", "", nil, true))

		req := httptest.NewRequest("GET", "/api", nil)
		req.Header.Set("X-Tenant-ID", "tenant-42")

		tc, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "tenant-42", tc.TenantID)
		assert.Equal(t, tenant.MethodHeader, tc.Method)
	})

	t.Run("missing required header is a hard failure", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(tenant.NewHeaderStrategy("X-Tenant-ID", "", nil, true))

		req := httptest.NewRequest("GET", "/api", nil)
		_, err := resolver.Resolve(req)

		var re *tenant.ResolutionError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "header", re.Strategy)
		// Distinctly not a "not found".
		assert.NotErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("domain header mapped through host mapping", func(t *testing.T) {
		t.Parallel()

		mapping := map[string]string{"acme.example.com": "tenant-acme"}
		resolver := tenant.NewResolver(tenant.NewHeaderStrategy("X-Tenant-ID", "X-Tenant-Domain", mapping, false))

		req := httptest.NewRequest("GET", "/api", nil)
		req.Header.Set("X-Tenant-Domain", "acme.example.com")

		tc, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "tenant-acme", tc.TenantID)
		assert.Equal(t, tenant.MethodDomainHeader, tc.Method)
		assert.Equal(t, "acme.example.com", tc.ResolvedFrom)
	})

	t.Run("unmapped domain header is not found", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(tenant.NewHeaderStrategy("X-Tenant-ID", "X-Tenant-Domain", nil, false))

		req := httptest.NewRequest("GET", "/api", nil)
		req.Header.Set("X-Tenant-Domain", "unknown.example.com")

		_, err := resolver.Resolve(req)
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})

	t.Run("invalid header value fails", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(tenant.NewHeaderStrategy("X-Tenant-ID", "", nil, false))

		req := httptest.NewRequest("GET", "/api", nil)
		req.Header.Set("X-Tenant-ID", "../../etc/passwd")

		var re *tenant.ResolutionError
		_, err := resolver.Resolve(req)
		assert.ErrorAs(t, err, &re)
	})
}

func TestPathStrategy(t *testing.T) {
	t.Parallel()

	t.Run("segment after prefix", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(tenant.NewPathStrategy(0, "/tenants"))

		req := httptest.NewRequest("GET", "/tenants/acme/dashboard", nil)
		tc, err := resolver.Resolve(req)
		require.NoError(t, err)

		assert.Equal(t, "acme", tc.TenantID)
		assert.Equal(t, tenant.MethodPath, tc.Method)
	})

	t.Run("no prefix", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(tenant.NewPathStrategy(1, ""))

		req := httptest.NewRequest("GET", "/api/acme/orders", nil)
		tc, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "acme", tc.TenantID)
	})

	t.Run("position out of range fails with resolution error", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(tenant.NewPathStrategy(5, ""))

		req := httptest.NewRequest("GET", "/api/acme", nil)
		_, err := resolver.Resolve(req)

		var re *tenant.ResolutionError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "path", re.Strategy)
	})

	t.Run("prefix mismatch falls through to not found", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(tenant.NewPathStrategy(0, "/tenants"))

		req := httptest.NewRequest("GET", "/api/acme", nil)
		_, err := resolver.Resolve(req)
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})
}

func TestCompositeStrategy(t *testing.T) {
	t.Parallel()

	newComposite := func(t *testing.T, required bool) tenant.Strategy {
		t.Helper()
		host, err := tenant.NewHostStrategy(map[string]string{"acme.platform.test": "tenant-acme"}, "")
		require.NoError(t, err)
		return tenant.NewCompositeStrategy(
			tenant.NewHeaderStrategy("X-Tenant-ID", "", nil, required),
			host,
			tenant.NewSubdomainStrategy(0, "platform.test"),
			tenant.NewPathStrategy(0, "/tenants"),
		)
	}

	t.Run("header wins over host", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(newComposite(t, false))

		req := httptest.NewRequest("GET", "http://acme.platform.test/", nil)
		req.Header.Set("X-Tenant-ID", "tenant-override")

		tc, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "tenant-override", tc.TenantID)
		assert.Equal(t, tenant.MethodHeader, tc.Method)
	})

	t.Run("falls through to host mapping", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(newComposite(t, false))

		req := httptest.NewRequest("GET", "http://acme.platform.test/", nil)
		tc, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "tenant-acme", tc.TenantID)
		assert.Equal(t, tenant.MethodHostMapping, tc.Method)
	})

	t.Run("falls through to subdomain", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(newComposite(t, false))

		req := httptest.NewRequest("GET", "http://beta.platform.test/", nil)
		tc, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "beta", tc.TenantID)
		assert.Equal(t, tenant.MethodSubdomain, tc.Method)
	})

	t.Run("required header short-circuits the chain", func(t *testing.T) {
		t.Parallel()

		resolver := tenant.NewResolver(newComposite(t, true))

		// Host would resolve, but the header policy rejects first.
		req := httptest.NewRequest("GET", "http://acme.platform.test/", nil)
		_, err := resolver.Resolve(req)

		var re *tenant.ResolutionError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "header", re.Strategy)
	})

	t.Run("aggregates all failure reasons", func(t *testing.T) {
		t.Parallel()

		host, err := tenant.NewHostStrategy(map[string]string{"acme.platform.test": "tenant-acme"}, "")
		require.NoError(t, err)
		resolver := tenant.NewResolver(tenant.NewCompositeStrategy(
			host,
			tenant.NewSubdomainStrategy(10, ""),
		))

		req := httptest.NewRequest("GET", "http://other.platform.test/", nil)
		_, err = resolver.Resolve(req)
		require.Error(t, err)

		// Both the unmapped host and the out-of-range position survive.
		var nfe *tenant.NotFoundError
		var re *tenant.ResolutionError
		assert.ErrorAs(t, err, &nfe)
		assert.ErrorAs(t, err, &re)
	})
}

func TestResolve_Deterministic(t *testing.T) {
	t.Parallel()

	strategy, err := tenant.NewHostStrategy(map[string]string{"acme.platform.test": "tenant-acme"}, "")
	require.NoError(t, err)
	resolver := tenant.NewResolver(strategy)

	for range 10 {
		req := httptest.NewRequest("GET", "http://acme.platform.test/api", nil)
		tc, err := resolver.Resolve(req)
		require.NoError(t, err)
		assert.Equal(t, "tenant-acme", tc.TenantID)
		assert.Equal(t, tenant.MethodHostMapping, tc.Method)
	}
}
