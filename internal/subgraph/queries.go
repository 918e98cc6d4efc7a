package subgraph

const marketFields = `
  id
  isLive
  marketDecimals
  pyth { id }
  depositToken { id symbol decimals pyth { id } }
  liquidationThreshold
  liquidationFee
  closingFee
  openingFee
  maxOpenInterest
  totalLongs
  totalShorts
  baseFeeCumulativeLongs
  baseFeeCumulativeShorts
  dynamicFeeCumulativeLongs
  dynamicFeeCumulativeShorts
  deviationCoeff
  deviationConst
  baseCoeff
  baseConst
  dynamicCoeff
  maxDynamicBorrowFee
`

const pendingOrdersQuery = `
{
  orders(
    first: %d
    orderBy: createdTimestamp
    orderDirection: asc
    where: { status: PENDING, deadline_gt: "%d" }
  ) {
    id
    user { id }
    position { id }
    isLimitOrder
    triggerAbove
    isLong
    expectedPrice
    maxSlippage
    deltaCollateral
    deltaSize
    deadline
    status
    createdTimestamp
    market {` + marketFields + `}
  }
}`

const openPositionsQuery = `
{
  positions(
    first: %d
    orderBy: positionCollateralAmount
    orderDirection: desc
    where: { status: OPEN }
  ) {
    id
    user { id }
    isLong
    positionCollateralAmount
    positionSize
    avgPrice
    lastCumulativeFee
    status
    createdTimestamp
    lastRefresh
    market {` + marketFields + `}
  }
}`

const positionByIDQuery = `
{
  position(id: "%s") {
    id
    user { id }
    isLong
    positionCollateralAmount
    positionSize
    avgPrice
    lastCumulativeFee
    status
    createdTimestamp
    lastRefresh
    market {` + marketFields + `}
  }
}`
