// Package alpino talks to the Alpino dependency parser.
//
// Two backends implement Parser:
//
//   - ServerClient connects to a running Alpino server over TCP, one
//     connection per sentence. At construction it calibrates how the server
//     echoes sentence ids and stores the outcome in an immutable Calibration.
//   - ProcessClient runs the Alpino executable once per sentence inside an
//     ephemeral work directory.
//
// Both resolve the parser version from the installation's version file when
// the installation directory is known.
package alpino
