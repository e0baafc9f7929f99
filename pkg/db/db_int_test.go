package db

import (
	"os"
	"path/filepath"
	"testing"

	"liyu1981.xyz/iot-datalogger/pkg/common"
	constant "liyu1981.xyz/iot-datalogger/pkg/common"
)

func TestWithEnvPath(t *testing.T) {
	common.SetTestLoggerNop()

	if os.Getenv(constant.EnvKeyRunIntegrationTests) != "true" {
		t.Skip("Skipping integration test: RUN_INTEGRATION_TESTS environment variable not set")
	}

	testPath := filepath.Join(t.TempDir(), "test.db")
	t.Setenv(constant.EnvKeyIOTDbPath, testPath)

	instance, err := Open(UseSqliteDialector())
	if err != nil || instance == nil || instance.Conn == nil {
		t.Fatalf("Expected non-nil DB connection, err=%v", err)
	}
	defer instance.Close()

	if _, err := os.Stat(testPath); os.IsNotExist(err) {
		t.Errorf("Expected database file to be created at %s", testPath)
	}

	if err := instance.PutBlob(constant.BlobKeyUser, `{"userId":"u"}`); err != nil {
		t.Fatalf("put blob: %v", err)
	}

	reopened, err := Open(UseSqliteDialector())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	value, found, err := reopened.GetBlob(constant.BlobKeyUser)
	if err != nil || !found || value != `{"userId":"u"}` {
		t.Errorf("expected persisted blob, got %q found=%v err=%v", value, found, err)
	}
}
