// Package storage persists saved presets across restarts. Favorites
// live in a signed cookie and per-session filter state is ephemeral, so
// presets are the only server-side state worth keeping. Writes go
// through a temp file and rename so a crash never leaves a half-written
// file behind.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/minchang/zipscout/pkg/types"
)

const presetsFile = "presets.json"

type DiskStorage struct {
	Country    string
	RootFolder string
}

func NewDiskStorage(country, rootFolder string) *DiskStorage {
	return &DiskStorage{
		Country:    country,
		RootFolder: rootFolder,
	}
}

func (d *DiskStorage) GetFileName(name string) (string, string) {
	fileName := path.Join(d.RootFolder, d.Country, name)
	tmpFileName := fileName + ".tmp-" + fmt.Sprintf("%d", time.Now().UnixMilli())
	return fileName, tmpFileName
}

func (d *DiskStorage) LoadPresets(output *[]types.Preset) error {
	return d.LoadJson(output, presetsFile)
}

func (d *DiskStorage) SavePresets(presets []types.Preset) error {
	return d.SaveJson(presets, presetsFile)
}

func (d *DiskStorage) SaveJson(data any, name string) error {
	fileName, tmpFileName := d.GetFileName(name)
	if err := os.MkdirAll(path.Dir(fileName), 0o755); err != nil {
		return err
	}
	file, err := os.Create(tmpFileName)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(file)
	err = enc.Encode(data)
	file.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmpFileName, fileName)
}

func (d *DiskStorage) LoadJson(data any, filename string) error {
	name, _ := d.GetFileName(filename)
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	defer file.Close()
	err = json.NewDecoder(file).Decode(data)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (d *DiskStorage) StreamContent(w io.Writer, fileName string) (int64, error) {
	osFileName, _ := d.GetFileName(fileName)
	file, err := os.Open(osFileName)
	if err != nil {
		return 0, err
	}
	defer file.Close()
	return file.WriteTo(w)
}
