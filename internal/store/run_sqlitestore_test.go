package store

import (
	"context"
	"database/sql"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/tagship/tagship/internal/util"

	_ "modernc.org/sqlite"
)

type runSQLiteStoreSuite struct {
	runStore *RunSQLiteStore
	db       *sql.DB
	suite.Suite
}

func TestRunSQLiteStore(t *testing.T) {
	suite.Run(t, new(runSQLiteStoreSuite))
}

func (suite *runSQLiteStoreSuite) SetupSuite() {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		log.Fatal(err)
	}
	suite.db = db

	RunMigrations(db, "migrations")

	suite.runStore = NewRunSQLiteStore(db, db)
}

func (suite *runSQLiteStoreSuite) TearDownSuite() {
	suite.db.Close()
}

func (suite *runSQLiteStoreSuite) TestCreateAndReadRun() {
	// act
	r, err := suite.runStore.CreateRun(context.Background(), "v1.2.3", "tag")

	// assert
	suite.NoError(err)
	suite.NotZero(r.RunID)
	suite.Equal(StatusQueued, r.Status)

	read, err := suite.runStore.ReadRunByID(context.Background(), r.RunID)
	suite.NoError(err)
	suite.Equal("v1.2.3", read.Ref)
	suite.Equal("tag", read.RefKind)
}

func (suite *runSQLiteStoreSuite) TestRunLifecycleUpdates() {
	// arrange
	r, err := suite.runStore.CreateRun(context.Background(), "main", "branch")
	suite.NoError(err)

	// act
	startedOn := time.Now().UTC()
	err = suite.runStore.UpdateRunStartedOn(
		context.Background(), r.RunID, "workspaces/20250101_000000000", StatusRunning, &startedOn,
	)
	suite.NoError(err)

	endedOn := time.Now().UTC()
	err = suite.runStore.UpdateRunEndedOn(
		context.Background(), r.RunID,
		StatusPassed, "done", "skipped",
		util.AsPtr("target/wasm32-wasip1/release/plugin.wasm"),
		&endedOn,
	)
	suite.NoError(err)

	// assert
	read, err := suite.runStore.ReadRunByID(context.Background(), r.RunID)
	suite.NoError(err)
	suite.Equal(StatusPassed, read.Status)
	suite.NotNil(read.StageReached)
	suite.Equal("done", *read.StageReached)
	suite.NotNil(read.Outcome)
	suite.Equal("skipped", *read.Outcome)
	suite.NotNil(read.ArtifactPath)
	suite.NotNil(read.StartedOn)
	suite.NotNil(read.EndedOn)
}

func (suite *runSQLiteStoreSuite) TestAppendRunOutput() {
	// arrange
	r, err := suite.runStore.CreateRun(context.Background(), "main", "branch")
	suite.NoError(err)

	// act
	suite.NoError(suite.runStore.AppendRunOutput(context.Background(), r.RunID, "first line\n"))
	suite.NoError(suite.runStore.AppendRunOutput(context.Background(), r.RunID, "second line\n"))

	// assert
	read, err := suite.runStore.ReadRunByID(context.Background(), r.RunID)
	suite.NoError(err)
	suite.NotNil(read.Output)
	suite.Equal("first line\nsecond line\n", *read.Output)
}

func (suite *runSQLiteStoreSuite) TestListAndCountRuns() {
	// arrange
	_, err := suite.runStore.CreateRun(context.Background(), "v2.0.0", "tag")
	suite.NoError(err)

	// act
	runs, err := suite.runStore.ListRuns(context.Background())
	suite.NoError(err)
	count, err := suite.runStore.CountRuns(context.Background())
	suite.NoError(err)

	// assert
	suite.NotEmpty(runs)
	suite.Equal(int64(len(runs)), count)
}

func (suite *runSQLiteStoreSuite) TestDeleteRun() {
	// arrange
	r, err := suite.runStore.CreateRun(context.Background(), "main", "branch")
	suite.NoError(err)

	// act
	suite.NoError(suite.runStore.DeleteRun(context.Background(), r.RunID))

	// assert
	_, err = suite.runStore.ReadRunByID(context.Background(), r.RunID)
	suite.Error(err)
}
