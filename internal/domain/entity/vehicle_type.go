package entity

// VehicleType is the vehicle class a sensor channel counts.
type VehicleType string

const (
	VehicleAgricultural                  VehicleType = "agriculturalVehicle"
	VehicleAny                           VehicleType = "anyVehicle"
	VehicleArticulated                   VehicleType = "articulatedVehicle"
	VehicleBicycle                       VehicleType = "bicycle"
	VehicleBus                           VehicleType = "bus"
	VehicleCar                           VehicleType = "car"
	VehicleCaravan                       VehicleType = "caravan"
	VehicleCarOrLight                    VehicleType = "carOrLightVehicle"
	VehicleCarWithCaravan                VehicleType = "carWithCaravan"
	VehicleCarWithTrailer                VehicleType = "carWithTrailer"
	VehicleConstructionOrMaintenance     VehicleType = "constructionOrMaintenanceVehicle"
	VehicleFourWheelDrive                VehicleType = "fourWheelDrive"
	VehicleHighSided                     VehicleType = "highSidedVehicle"
	VehicleLorry                         VehicleType = "lorry"
	VehicleMoped                         VehicleType = "moped"
	VehicleMotorcycle                    VehicleType = "motorcycle"
	VehicleMotorcycleWithSideCar         VehicleType = "motorcycleWithSideCar"
	VehicleMotorscooter                  VehicleType = "motorscooter"
	VehicleTanker                        VehicleType = "tanker"
	VehicleThreeWheeled                  VehicleType = "threeWheeledVehicle"
	VehicleTrailer                       VehicleType = "trailer"
	VehicleTram                          VehicleType = "tram"
	VehicleTwoWheeled                    VehicleType = "twoWheeledVehicle"
	VehicleVan                           VehicleType = "van"
	VehicleWithCatalyticConverter        VehicleType = "vehicleWithCatalyticConverter"
	VehicleWithoutCatalyticConverter     VehicleType = "vehicleWithoutCatalyticConverter"
	VehicleWithCaravan                   VehicleType = "vehicleWithCaravan"
	VehicleWithTrailer                   VehicleType = "vehicleWithTrailer"
	VehicleWithEvenNumberedRegistration  VehicleType = "withEvenNumberedRegistrationPlates"
	VehicleWithOddNumberedRegistration   VehicleType = "withOddNumberedRegistrationPlates"
	VehicleOther                         VehicleType = "other"
)

var knownVehicleTypes = map[VehicleType]struct{}{
	VehicleAgricultural: {}, VehicleAny: {}, VehicleArticulated: {}, VehicleBicycle: {},
	VehicleBus: {}, VehicleCar: {}, VehicleCaravan: {}, VehicleCarOrLight: {},
	VehicleCarWithCaravan: {}, VehicleCarWithTrailer: {}, VehicleConstructionOrMaintenance: {},
	VehicleFourWheelDrive: {}, VehicleHighSided: {}, VehicleLorry: {}, VehicleMoped: {},
	VehicleMotorcycle: {}, VehicleMotorcycleWithSideCar: {}, VehicleMotorscooter: {},
	VehicleTanker: {}, VehicleThreeWheeled: {}, VehicleTrailer: {}, VehicleTram: {},
	VehicleTwoWheeled: {}, VehicleVan: {}, VehicleWithCatalyticConverter: {},
	VehicleWithoutCatalyticConverter: {}, VehicleWithCaravan: {}, VehicleWithTrailer: {},
	VehicleWithEvenNumberedRegistration: {}, VehicleWithOddNumberedRegistration: {},
	VehicleOther: {},
}

// IsKnown reports whether v is one of the feed's vehicle classes.
func (v VehicleType) IsKnown() bool {
	_, ok := knownVehicleTypes[v]

	return ok
}
