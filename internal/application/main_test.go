package application_test

import (
	"os"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/bootcamp-directory/pkg/helpers"
)

func TestMain(m *testing.M) {
	helpers.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}
