package sensor

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"liyu1981.xyz/sensor-api-service/pkg/db"
	"liyu1981.xyz/sensor-api-service/pkg/sensor/mocks"
)

func GetMockCoreWithFileSqlite(t *testing.T, useMockIReading, useMockISensor bool) (
	*gomock.Controller,
	*Core,
	*mocks.MockIReading,
	*mocks.MockISensor,
) {
	ctrl := gomock.NewController(t)

	mockIReading := mocks.NewMockIReading(ctrl)
	mockISensor := mocks.NewMockISensor(ctrl)

	connector := db.NewConnector(db.Config{
		Type:             db.TypeFile,
		ConnectionString: filepath.Join(t.TempDir(), "sensors.db"),
	})
	require.NoError(t, connector.Migrate(context.Background()))

	core := NewCore(connector)

	opts := ServiceOpts{}
	if useMockIReading {
		opts.Reading = mockIReading
	}
	if useMockISensor {
		opts.Sensor = mockISensor
	}
	core.WithServices(opts)

	return ctrl, core, mockIReading, mockISensor
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
