package memory

import "time"

// Clock supplies the current time. Pass nil to constructors to use time.Now;
// tests inject a fake to exercise expiry deterministically.
type Clock func() time.Time
