// SPDX-License-Identifier: BSD-3-Clause

// Package nvidia implements backend.Repository for Nvidia GPUs. NVML is
// a cgo-wrapped vendor library with no pure-Go binding available, so
// this adapter drives the `nvidia-smi`/`nvidia-settings` CLI path
// instead: discovering display:gpu:fan IDs by parsing
// `nvidia-settings -q gpus --verbose`, with Xauthority discovery on
// start-up and retried on any "Authorization required" error from
// nvidia-settings.
package nvidia
