package session

import (
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "mc_admin"
	reportKey   = "resync_report"
)

// NewStore keeps session data on disk; resync reports are too large for a cookie.
// An empty dir uses the OS temp dir.
func NewStore(secret, dir string, secure bool) *sessions.FilesystemStore {
	store := sessions.NewFilesystemStore(dir, []byte(secret))
	store.MaxLength(0)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// ReportFlash holds the last resync report for exactly one read.
type ReportFlash struct {
	Store sessions.Store
}

func (f ReportFlash) Put(w http.ResponseWriter, r *http.Request, report string) error {
	sess, err := f.Store.Get(r, sessionName)
	if err != nil && sess == nil {
		return err
	}
	// only the latest report is kept
	sess.Flashes(reportKey)
	sess.AddFlash(report, reportKey)
	return sess.Save(r, w)
}

// Pop returns the stored report and removes it.
func (f ReportFlash) Pop(w http.ResponseWriter, r *http.Request) (string, bool, error) {
	sess, err := f.Store.Get(r, sessionName)
	if err != nil && sess == nil {
		return "", false, err
	}
	flashes := sess.Flashes(reportKey)
	if len(flashes) == 0 {
		return "", false, nil
	}
	if err := sess.Save(r, w); err != nil {
		return "", false, err
	}
	report, ok := flashes[len(flashes)-1].(string)
	return report, ok, nil
}
