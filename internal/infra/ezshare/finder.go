package ezshare

import (
	"context"
	"strings"

	"dcimsync/internal/domain"
	"dcimsync/internal/logging"
)

// Scanner lists the SSIDs of nearby wireless networks.
type Scanner interface {
	Networks(ctx context.Context) ([]string, error)
}

// Finder reports the first nearby network whose SSID carries the card prefix.
type Finder struct {
	Scanner     Scanner
	Prefix      string
	Password    string
	DefaultName string
	Logger      logging.Logger
}

func (f Finder) Find(ctx context.Context) (*domain.Source, error) {
	ssids, err := f.Scanner.Networks(ctx)
	if err != nil {
		return nil, err
	}
	for _, ssid := range ssids {
		if !strings.Contains(ssid, f.Prefix) {
			continue
		}
		name := domain.DisplayName(ssid, f.Prefix, f.DefaultName)
		if name == f.DefaultName {
			f.Logger.Warnf("No camera name in %q, using default: %q", ssid, name)
		}
		f.Logger.Infof("%q is online!", ssid)
		return &domain.Source{
			Name:       name,
			Identifier: ssid,
			Mode:       domain.ModeNetwork,
			SSID:       ssid,
			Password:   f.Password,
		}, nil
	}
	return nil, nil
}
