package clientip_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/tenantguard/pkg/clientip"
)

func TestGetIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr only",
			remoteAddr: "203.0.113.10:51234",
			want:       "203.0.113.10",
		},
		{
			name:       "x-forwarded-for single",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7"},
			want:       "198.51.100.7",
		},
		{
			name:       "x-forwarded-for chain uses first valid",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.7, 10.0.0.2, 10.0.0.3"},
			want:       "198.51.100.7",
		},
		{
			name:       "x-forwarded-for garbage falls through to real-ip",
			remoteAddr: "10.0.0.1:1234",
			headers: map[string]string{
				"X-Forwarded-For": "not-an-ip",
				"X-Real-IP":       "198.51.100.9",
			},
			want: "198.51.100.9",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "2001:db8::1"},
			want:       "2001:db8::1",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "203.0.113.10",
			want:       "203.0.113.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			assert.Equal(t, tt.want, clientip.GetIP(req))
		})
	}
}

func TestIsLocal(t *testing.T) {
	t.Parallel()

	assert.True(t, clientip.IsLocal("127.0.0.1"))
	assert.True(t, clientip.IsLocal("::1"))
	assert.True(t, clientip.IsLocal("10.1.2.3"))
	assert.True(t, clientip.IsLocal("192.168.0.5"))
	assert.False(t, clientip.IsLocal("203.0.113.10"))
	assert.False(t, clientip.IsLocal("not-an-ip"))
	assert.False(t, clientip.IsLocal(""))
}
