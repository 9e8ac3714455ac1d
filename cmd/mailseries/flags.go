package main

import (
	"fmt"
	"strconv"
	"strings"
)

// intList collects a repeatable integer flag; "-n 2 -n 5" and "-n 2,5" are equivalent.
type intList []int

func (l *intList) String() string {
	if l == nil {
		return ""
	}
	parts := make([]string, len(*l))
	for i, n := range *l {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func (l *intList) Set(v string) error {
	for part := range strings.SplitSeq(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return fmt.Errorf("record number must be a positive integer, got %q", part)
		}
		*l = append(*l, n)
	}
	return nil
}

// counter counts how often a boolean flag is given, as in "-v -v".
type counter int

func (c *counter) String() string {
	if c == nil {
		return "0"
	}
	return strconv.Itoa(int(*c))
}

func (c *counter) Set(v string) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	if b {
		*c++
	}
	return nil
}

func (c *counter) IsBoolFlag() bool { return true }
