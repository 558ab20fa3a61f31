// Package jobkinds implements extension job kinds layered over the core
// ones: SubprocessJob (a shell command), WebappJob (a long-running process
// that needs an ip/port to bind), and CronJob/SentinelJob (periodic or
// conditional resubmission). These are external collaborators against
// pkg/engine's Job/Condition/Backend contracts, not part of the scheduling
// core itself.
package jobkinds
