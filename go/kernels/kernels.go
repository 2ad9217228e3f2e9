// Copyright 2025 Supabase, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package kernels answers the one question the plan tagging layer has for
// the GPU runtime: does a device kernel exist for a given decimal type. The
// kernels themselves live in the columnar runtime and are out of scope.
package kernels

import (
	"github.com/zhztheplayer/spark-rapids/go/shims"
	"github.com/zhztheplayer/spark-rapids/go/sqltypes"
)

// DeviceStorage is the width of the device column backing a decimal type.
type DeviceStorage int

const (
	// StorageNone means no device representation exists for the type.
	StorageNone DeviceStorage = iota
	StorageDecimal32
	StorageDecimal64
	StorageDecimal128
)

// String returns the storage bucket's name.
func (s DeviceStorage) String() string {
	switch s {
	case StorageDecimal32:
		return "DECIMAL32"
	case StorageDecimal64:
		return "DECIMAL64"
	case StorageDecimal128:
		return "DECIMAL128"
	default:
		return "NONE"
	}
}

// StorageFor returns the narrowest device column representation that can
// hold t, or StorageNone when t has no device representation at all.
func StorageFor(t sqltypes.DecimalType) DeviceStorage {
	if t.Scale < 0 || t.Scale > t.Precision {
		return StorageNone
	}
	switch {
	case t.Precision <= sqltypes.Decimal32MaxPrecision:
		return StorageDecimal32
	case t.Precision <= sqltypes.Decimal64MaxPrecision:
		return StorageDecimal64
	case t.Precision <= sqltypes.Decimal128MaxPrecision:
		return StorageDecimal128
	default:
		return StorageNone
	}
}

// SupportsDecimal reports whether a device kernel exists for decimal type t
// under the probed engine capabilities.
func SupportsDecimal(t sqltypes.DecimalType, caps shims.Capabilities) bool {
	storage := StorageFor(t)
	if storage == StorageNone {
		return false
	}
	if storage == StorageDecimal128 && !caps.SupportsDecimal128 {
		return false
	}
	return t.Precision <= caps.MaxDecimalPrecision
}
