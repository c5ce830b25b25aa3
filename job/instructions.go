package job

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"renditionmaker/models"
	"renditionmaker/utils"
)

// ErrInvalidWorkItem rejects a submission before it is queued.
var ErrInvalidWorkItem = errors.New("invalid work item")

// PrepareWorkItem validates a submitted item and fills in its id and
// submission time. Process arguments are not checked here; a bad argument
// string fails the item when it is processed.
func PrepareWorkItem(item *models.WorkItem, now time.Time) error {
	item.PayloadPath = strings.TrimSpace(item.PayloadPath)
	if item.PayloadPath == "" {
		return fmt.Errorf("%w: payload path required", ErrInvalidWorkItem)
	}
	if strings.TrimSpace(item.UserID) == "" {
		return fmt.Errorf("%w: acting user required", ErrInvalidWorkItem)
	}
	if item.CallbackURL != "" {
		u, err := url.Parse(item.CallbackURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: callback must be an absolute http(s) URL", ErrInvalidWorkItem)
		}
	}
	if item.ID == "" {
		item.ID = utils.NewWorkItemID()
	}
	if item.SubmittedAt.IsZero() {
		item.SubmittedAt = now
	}
	return nil
}
