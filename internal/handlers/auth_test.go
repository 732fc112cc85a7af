package handlers

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"backend/internal/middleware"
)

func TestIssueTokenRoundTrip(t *testing.T) {
	userID := primitive.NewObjectID()

	token, err := IssueToken(userID, "test-secret", time.Hour)
	require.NoError(t, err)

	parsed, err := middleware.ParseUserID(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, userID, parsed)
}

func TestIssueTokenRejectsWrongSecret(t *testing.T) {
	token, err := IssueToken(primitive.NewObjectID(), "test-secret", time.Hour)
	require.NoError(t, err)

	_, err = middleware.ParseUserID(token, "other-secret")
	assert.Error(t, err)
}

func TestIssueTokenRejectsExpired(t *testing.T) {
	token, err := IssueToken(primitive.NewObjectID(), "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = middleware.ParseUserID(token, "test-secret")
	assert.Error(t, err)
}

func TestIsDuplicateUserName(t *testing.T) {
	duplicate := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error"}},
	}
	assert.True(t, isDuplicateUserName(duplicate))

	other := mongo.WriteException{
		WriteErrors: []mongo.WriteError{{Code: 121, Message: "Document failed validation"}},
	}
	assert.False(t, isDuplicateUserName(other))
	assert.False(t, isDuplicateUserName(errors.New("network down")))
	assert.False(t, isDuplicateUserName(nil))
}

func TestVerifyPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("opensesame"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, verifyPassword(string(hash), "opensesame"))
	assert.False(t, verifyPassword(string(hash), "opensesame "))
	assert.False(t, verifyPassword(string(hash), ""))
	assert.False(t, verifyPassword("not a hash", "opensesame"))
}
