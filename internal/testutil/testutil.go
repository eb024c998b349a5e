package testutil

import (
	"database/sql"
	"os"
	"strings"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/datastax/query-plan-apis/log"
)

var database *sql.DB

// SetupIntegrationTestFixture opens an in-memory SQLite database and runs the provided statements
func SetupIntegrationTestFixture(statements ...string) *sql.DB {
	var err error
	database, err = sql.Open("sqlite", ":memory:")
	PanicIfError(err)

	// every connection to ":memory:" is a different database
	database.SetMaxOpenConns(1)

	for _, statement := range statements {
		_, err := database.Exec(statement)
		PanicIfError(err)
	}

	return database
}

func TearDownIntegrationTestFixture() {
	if database != nil {
		_ = database.Close()
		database = nil
	}
}

func PanicIfError(err error) {
	if err != nil {
		panic(err)
	}
}

func TestLogger() log.Logger {
	if strings.ToUpper(os.Getenv("TEST_TRACE")) == "ON" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
		return log.NewZapLogger(logger)
	}

	return log.NewZapLogger(zap.NewNop())
}
