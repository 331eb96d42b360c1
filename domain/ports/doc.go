// Package ports defines the interfaces between the authorization core and
// its collaborators (registry, sandbox, consent store, prompter, audit
// log, effect handlers). Implementations live under infrastructure/.
package ports
