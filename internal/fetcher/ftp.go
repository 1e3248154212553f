package fetcher

import (
	"context"
	"errors"
	"io"
	"net"
	"net/textproto"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fieldserve/runsheet-cli/internal/config"
	"github.com/fieldserve/runsheet-cli/internal/model"
	"github.com/fieldserve/runsheet-cli/internal/resilience"
)

// FTPFetcher downloads run sheets from an FTP drop folder into a temp
// directory, then hands out local file handles.
type FTPFetcher struct {
	cfg     config.FTPConfig
	tempDir string
	timeout time.Duration
}

// NewFTP creates an FTP fetcher. Downloads land under tempDir.
func NewFTP(cfg config.FTPConfig, tempDir string) *FTPFetcher {
	return &FTPFetcher{cfg: cfg, tempDir: tempDir, timeout: 30 * time.Second}
}

// ListDate downloads every run sheet for one day from the drop folder.
// Transfers retry on transient failures; a day directory missing on the
// server is an empty day.
func (f *FTPFetcher) ListDate(ctx context.Context, date time.Time) ([]model.RunSheetFile, error) {
	conn, err := f.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Quit()

	remoteDir := path.Join(f.cfg.Dir, model.DateKey(date))
	entries, err := conn.List(remoteDir)
	if err != nil {
		if isRemoteMissing(err) {
			zap.L().Debug("fetcher: no remote day directory", zap.String("dir", remoteDir))
			return nil, nil
		}
		zap.L().Warn("fetcher: ftp list failed", zap.String("dir", remoteDir), zap.Error(err))
		return nil, eris.Wrapf(err, "fetcher: ftp list %s", remoteDir)
	}

	localDir := filepath.Join(f.tempDir, model.DateKey(date))
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "fetcher: mkdir %s", localDir)
	}

	var files []model.RunSheetFile
	for _, e := range entries {
		if e.Type != ftp.EntryTypeFile || !isRunSheet(e.Name) {
			continue
		}

		localPath := filepath.Join(localDir, cleanName(e.Name))
		retryCfg := resilience.DefaultRetryConfig()
		retryCfg.OnRetry = resilience.RetryLogger("ftp", "download")

		err := resilience.Do(ctx, retryCfg, func(ctx context.Context) error {
			return f.download(conn, path.Join(remoteDir, e.Name), localPath)
		})
		if err != nil {
			return nil, eris.Wrapf(err, "fetcher: download %s", e.Name)
		}

		files = append(files, model.RunSheetFile{
			ID:       uuid.New(),
			FilePath: localPath,
			Driver:   DriverFromName(e.Name),
			Date:     date,
		})
	}
	return files, nil
}

func (f *FTPFetcher) dial(ctx context.Context) (*ftp.ServerConn, error) {
	addr := f.cfg.Addr
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "21")
	}

	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(f.timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: ftp dial")
	}

	user, pass := f.cfg.User, f.cfg.Password
	if user == "" {
		user, pass = "anonymous", "anonymous@"
	}
	if err := conn.Login(user, pass); err != nil {
		conn.Quit()
		return nil, eris.Wrap(err, "fetcher: ftp login")
	}
	return conn, nil
}

func (f *FTPFetcher) download(conn *ftp.ServerConn, remotePath, localPath string) error {
	resp, err := conn.Retr(remotePath)
	if err != nil {
		return eris.Wrap(err, "fetcher: ftp retrieve")
	}
	defer resp.Close()

	file, err := os.Create(localPath)
	if err != nil {
		return eris.Wrap(err, "fetcher: create file")
	}
	defer file.Close()

	if _, err := io.Copy(file, resp); err != nil {
		return eris.Wrap(err, "fetcher: write file")
	}
	return nil
}

// isRemoteMissing reports whether an FTP error means the requested path
// does not exist, as opposed to an auth or connection failure.
func isRemoteMissing(err error) bool {
	var proto *textproto.Error
	return errors.As(err, &proto) && proto.Code == ftp.StatusFileUnavailable
}

// cleanName guards against path traversal in server-supplied names.
func cleanName(name string) string {
	return filepath.Base(strings.TrimSpace(name))
}
