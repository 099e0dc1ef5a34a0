// Package dashboard wires the console together: the push channel and the
// poll scheduler both funnel into the reconciler, committed snapshots
// drive the route overlay, and operator actions pass through the REST
// backend before triggering an immediate refresh.
//
// Selection rules:
//   - Selecting an order clears any clicked grid point, and vice versa.
//   - The selection is an order id; each commit re-resolves it, so a
//     vanished order empties the selection and clears the overlay.
package dashboard
