package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstanceKey(t *testing.T) {
	inst := &ServiceInstance{Name: "storefront-api", Host: "10.0.0.5", Port: 5000}
	assert.Equal(t, "/services/storefront-api/10.0.0.5:5000", instanceKey("/services/", inst))
	assert.Equal(t, "10.0.0.5:5000", inst.Addr())
}

func TestInstanceValue(t *testing.T) {
	value, err := instanceValue(&ServiceInstance{
		Name:     "storefront-api",
		Host:     "10.0.0.5",
		Port:     5000,
		Metadata: map[string]string{"grpc": "10.0.0.5:5001"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"storefront-api","host":"10.0.0.5","port":5000,"metadata":{"grpc":"10.0.0.5:5001"}}`, value)

	value, err = instanceValue(&ServiceInstance{Name: "storefront-api", Host: "10.0.0.5", Port: 5000})
	require.NoError(t, err)
	assert.NotContains(t, value, "metadata")
}
