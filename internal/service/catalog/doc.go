// Package catalog processes the OpenWrt firmware selector device list.
//
// It fetches the full device inventory from the sysupgrade API, keeps only
// devices that ship images for a stable release, derives the architecture
// from the build target, and writes a compact, title-sorted devices.json
// consumed by the dashboard and the firmware builder.
package catalog
