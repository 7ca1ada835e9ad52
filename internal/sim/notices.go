package sim

import "fmt"

const robberyNotice = "A robbery was reported downtown. Buildings near a police station keep earning."

var stageNotices = map[Stage]string{
	StageBurn:              "Fires are breaking out. Buildings outside fire station coverage will burn.",
	StageHospitalReduction: "An earthquake struck. Residents far from a hospital stop paying and special buildings need stabilizing.",
	StageHouseReduction:    "Police raids on houses are cutting residential revenue.",
	StagePlague:            "A plague is spreading. Vaccinate the city to restore full revenue.",
	StageMarketDeduction:   "Markets face a shortage. Pay the surplus cash to stop the deductions.",
	StageFestival:          "Festival season. The city receives a grant and banks and schools close.",
	StageConcertStoppage:   "A stampede stopped every concert. A charity levy now applies to revenue.",
	StageSeasonalReduction: "Heavy rainfall halves seasonal market revenue.",
}

func promptMessage(kind PromptKind, cost float64) string {
	switch kind {
	case PromptVaccine:
		return fmt.Sprintf("Buy vaccines for %.0f?", cost)
	case PromptCashPayment:
		return fmt.Sprintf("Pay %.0f surplus cash to the markets?", cost)
	default:
		return string(kind)
	}
}
