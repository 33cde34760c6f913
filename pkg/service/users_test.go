package service

import (
	"context"
	"testing"

	"github.com/example/storefront/pkg/apperr"
	"github.com/example/storefront/pkg/auth"
	"github.com/example/storefront/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUserService_Register(t *testing.T) {
	t.Run("new user", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("GetUserByEmail", mock.Anything, "jane@example.com").Return(nil, apperr.NotFound("User not found"))
		store.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

		user, err := NewUserService(store, nil).Register(context.Background(), RegisterInput{
			Name:     "Jane",
			Email:    " Jane@Example.com ",
			Password: "123456",
		})
		require.NoError(t, err)
		assert.Equal(t, "jane@example.com", user.Email)
		assert.NotEqual(t, "123456", user.Password)
		assert.True(t, auth.CheckPassword(user.Password, "123456"))
		assert.False(t, user.IsAdmin)
	})

	t.Run("duplicate email", func(t *testing.T) {
		store := new(MockUserStore)
		store.On("GetUserByEmail", mock.Anything, "jane@example.com").Return(&models.User{}, nil)

		_, err := NewUserService(store, nil).Register(context.Background(), RegisterInput{
			Name: "Jane", Email: "jane@example.com", Password: "123456",
		})
		assert.Equal(t, "User already exists", apperr.Message(err))
		assert.Equal(t, 400, apperr.Status(err))
		store.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})
}

func TestUserService_Login(t *testing.T) {
	hash, err := auth.HashPassword("123456")
	require.NoError(t, err)
	user := &models.User{ID: primitive.NewObjectID(), Email: "john@example.com", Password: hash}

	store := new(MockUserStore)
	store.On("GetUserByEmail", mock.Anything, "john@example.com").Return(user, nil)
	store.On("GetUserByEmail", mock.Anything, "nobody@example.com").Return(nil, apperr.NotFound("User not found"))
	svc := NewUserService(store, nil)

	got, err := svc.Login(context.Background(), LoginInput{Email: "john@example.com", Password: "123456"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Login(context.Background(), LoginInput{Email: "john@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	assert.Equal(t, "Invalid email or password", apperr.Message(err))

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "123456"})
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestUserService_UpdateProfileKeepsUnsetFields(t *testing.T) {
	id := primitive.NewObjectID()
	store := new(MockUserStore)
	store.On("GetUser", mock.Anything, id).Return(&models.User{ID: id, Name: "John", Email: "john@example.com", Password: "hash"}, nil)
	store.On("UpdateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	got, err := NewUserService(store, nil).UpdateProfile(context.Background(), id.Hex(), ProfileInput{Name: "Johnny"})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", got.Name)
	assert.Equal(t, "john@example.com", got.Email)
	assert.Equal(t, "hash", got.Password)
}

func TestUserService_UpdateUserSetsAdmin(t *testing.T) {
	id := primitive.NewObjectID()
	store := new(MockUserStore)
	store.On("GetUser", mock.Anything, id).Return(&models.User{ID: id, Name: "John"}, nil)
	store.On("UpdateUser", mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)

	admin := true
	got, err := NewUserService(store, nil).UpdateUser(context.Background(), id.Hex(), UserUpdateInput{IsAdmin: &admin})
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
	assert.Equal(t, "John", got.Name)
}

func TestUserService_DeleteUser(t *testing.T) {
	adminID, customerID := primitive.NewObjectID(), primitive.NewObjectID()
	store := new(MockUserStore)
	store.On("GetUser", mock.Anything, adminID).Return(&models.User{ID: adminID, IsAdmin: true}, nil)
	store.On("GetUser", mock.Anything, customerID).Return(&models.User{ID: customerID}, nil)
	store.On("DeleteUser", mock.Anything, customerID).Return(nil)
	svc := NewUserService(store, nil)

	err := svc.DeleteUser(context.Background(), adminID.Hex())
	assert.Equal(t, "Can not delete admin user", apperr.Message(err))
	store.AssertNotCalled(t, "DeleteUser", mock.Anything, adminID)

	require.NoError(t, svc.DeleteUser(context.Background(), customerID.Hex()))
	store.AssertCalled(t, "DeleteUser", mock.Anything, customerID)
}
