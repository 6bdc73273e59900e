/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Package common contains common properties used by the subpackages.
package common

import (
	"time"
)

const releaseYear = 2026
const releaseMonth = 1
const releaseDay = 1
const releaseHour = 0
const releaseMin = 00

// Version holds the package version. Bump ReleasedAt alongside it.
const Version = "0.1.0"

var ReleasedAt = time.Date(releaseYear, releaseMonth, releaseDay, releaseHour, releaseMin, 0, 0, time.UTC)
