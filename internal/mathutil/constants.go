package mathutil

// Bessel series evaluation
const (
	// besselMaxTerms bounds the I₀ power series. For the β values used by
	// audio kernels (β < 20) the series converges in well under 60 terms.
	besselMaxTerms = 200

	// besselEpsilon is the relative term size at which the series stops.
	besselEpsilon = 1e-17
)

// Kaiser window formula constants
// From Kaiser & Schafer's empirical formulas
const (
	// Attenuation thresholds for β calculation
	kaiserAttHigh   = 50.0 // High attenuation threshold (dB)
	kaiserAttMedium = 21.0 // Medium attenuation threshold (dB)

	// Kaiser β formula coefficients
	kaiserBetaHighCoeff1 = 0.1102 // Coefficient for high attenuation
	kaiserBetaHighOffset = 8.7    // Offset for high attenuation

	kaiserBetaMediumCoeff1 = 0.5842  // Primary coefficient for medium attenuation
	kaiserBetaMediumPower  = 0.4     // Power for medium attenuation formula
	kaiserBetaMediumCoeff2 = 0.07886 // Secondary coefficient for medium attenuation
)

// sincZeroThreshold is the |x| below which sinc(x) is taken as exactly 1.
const sincZeroThreshold = 1e-12

const halfDivisor = 2.0
