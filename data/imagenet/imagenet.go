// Copyright 2025 Lattice ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package imagenet loads ImageNet class label metadata.
//
// Label files are plain text, one class per line, ordered by class
// index. Each line holds a WordNet synset id, a short name, and a
// long name, separated by tabs:
//
//	n01440764	tench	tench, Tinca tinca
package imagenet

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// NumClasses is the class count of the standard ImageNet-1k label set.
const NumClasses = 1000

// Attributes holds per-class label metadata, indexed by class id.
type Attributes struct {
	Synsets     []string // WordNet ids ("n01440764")
	Classes     []string // short names ("tench")
	ClassesLong []string // full names ("tench, Tinca tinca")
}

// Len returns the number of classes.
func (a *Attributes) Len() int {
	return len(a.Synsets)
}

// Class returns the short name of class index i.
func (a *Attributes) Class(i int) string {
	return a.Classes[i]
}

// Load reads a label file.
func Load(path string) (*Attributes, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imagenet: failed to open label file: %w", err)
	}
	defer f.Close()

	attrs := &Attributes{}
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		fields := strings.SplitN(text, "\t", 3)
		if len(fields) < 3 {
			return nil, fmt.Errorf("imagenet: malformed label on line %d: %q", line, text)
		}
		attrs.Synsets = append(attrs.Synsets, fields[0])
		attrs.Classes = append(attrs.Classes, fields[1])
		attrs.ClassesLong = append(attrs.ClassesLong, fields[2])
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("imagenet: failed to read label file: %w", err)
	}
	if attrs.Len() == 0 {
		return nil, fmt.Errorf("imagenet: label file %s is empty", path)
	}
	return attrs, nil
}
