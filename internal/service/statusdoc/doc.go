// Package statusdoc renders a build summary as markdown and JSON and
// publishes it with the cloud CLI, so the CI dashboard always shows the
// state of the latest firmware build.
package statusdoc
