package main

import (
	"testing"

	"github.com/example/storefront/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSeedUsers(t *testing.T) {
	users, err := seedUsers()
	require.NoError(t, err)
	require.Len(t, users, len(sampleUsers))

	assert.True(t, users[0].IsAdmin)
	for i, u := range users {
		assert.True(t, auth.CheckPassword(u.Password, "123456"), u.Email)
		assert.Equal(t, "123456", sampleUsers[i].Password)
	}

	again, err := seedUsers()
	require.NoError(t, err)
	assert.True(t, auth.CheckPassword(again[1].Password, "123456"))
}

func TestSeedProducts(t *testing.T) {
	owner := primitive.NewObjectID()
	products := seedProducts(owner)
	require.Len(t, products, len(sampleProducts))

	for i, p := range products {
		assert.Equal(t, owner, p.User)
		assert.True(t, sampleProducts[i].User.IsZero())
	}
}
