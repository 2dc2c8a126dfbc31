package vim

import "github.com/dshills/modalcore/internal/input/key"

// MaxCount is where counts saturate instead of overflowing.
const MaxCount = 999999999

// CountState accumulates the count typed before a command.
//
// Count0 is the count as typed, with 0 meaning "no count". OpCount holds
// a count carried over from a pending operator or stashed by a secondary
// count; Merge folds the two together by multiplication.
type CountState struct {
	Count0  int
	OpCount int
}

// Reset clears the count state.
func (c *CountState) Reset() {
	c.Count0 = 0
	c.OpCount = 0
}

// Accepts reports whether code continues the count: 1-9 always, 0 and
// the delete keys only once a count has started.
func (c *CountState) Accepts(code key.Code) bool {
	if code >= '1' && code <= '9' {
		return true
	}
	if c.Count0 == 0 {
		return false
	}
	return code == '0' || code == key.Del || code == key.KDel
}

// Feed consumes one accepted code. The delete keys drop the last digit.
func (c *CountState) Feed(code key.Code) {
	if code == key.Del || code == key.KDel {
		c.Count0 /= 10
		return
	}
	c.Count0 = AccumulateDigit(c.Count0, int(code-'0'))
}

// BeginSecondary stashes the running count in OpCount and restarts
// accumulation, as a window command's second count does.
func (c *CountState) BeginSecondary() {
	c.OpCount = c.Count0
	c.Count0 = 0
}

// Merge combines a carried OpCount with Count0 and returns the final
// Count0 and Count1. Afterwards OpCount equals Count0 so it can be carried
// to the next cycle.
func (c *CountState) Merge() (count0, count1 int) {
	if c.OpCount != 0 {
		if c.Count0 != 0 {
			c.Count0 = CombineCounts(c.Count0, c.OpCount)
		} else {
			c.Count0 = c.OpCount
		}
	}
	c.OpCount = c.Count0
	return c.Count0, Count1(c.Count0)
}

// AccumulateDigit appends digit to value, saturating at MaxCount.
func AccumulateDigit(value, digit int) int {
	if value > (MaxCount-digit)/10 {
		return MaxCount
	}
	return value*10 + digit
}

// Count1 returns count0, or 1 when no count was given.
func Count1(count0 int) int {
	if count0 <= 0 {
		return 1
	}
	return count0
}

// CombineCounts multiplies two counts, saturating at MaxCount. A zero
// count stands for 1. "2d3w" deletes 6 words.
func CombineCounts(a, b int) int {
	a, b = Count1(a), Count1(b)
	if a > MaxCount/b {
		return MaxCount
	}
	return a * b
}
